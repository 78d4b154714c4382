// Package transcript persists one structured record per resolved chat turn
// for history and audit. Recording is best effort from the conversation's
// point of view: a failed write is logged by the caller, never surfaced to
// the shopper.
package transcript

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"negobot/internal/model"
)

// Recorder persists turn records.
type Recorder interface {
	Record(ctx context.Context, rec *model.TurnRecord) error

	// Recent returns up to limit records for the user, newest first.
	// productID of 0 means all products.
	Recent(ctx context.Context, userID string, productID int64, limit int) ([]model.TurnRecord, error)
}

// NewID generates a ULID for a turn record: time-ordered, so transcript
// rows sort chronologically by primary key.
func NewID(ts time.Time) string {
	return ulid.MustNew(ulid.Timestamp(ts), rand.Reader).String()
}

// Noop is used when no transcript database is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Record(context.Context, *model.TurnRecord) error { return nil }

func (Noop) Recent(context.Context, string, int64, int) ([]model.TurnRecord, error) {
	return nil, nil
}

// Memory keeps records in process memory. Used in tests and DB-less runs
// where history should still be visible within the process lifetime.
type Memory struct {
	mu      sync.Mutex
	records []model.TurnRecord
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Record(_ context.Context, rec *model.TurnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *Memory) Recent(_ context.Context, userID string, productID int64, limit int) ([]model.TurnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.TurnRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.records[i]
		if r.UserID != userID {
			continue
		}
		if productID != 0 && r.ProductID != productID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
