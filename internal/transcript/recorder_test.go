package transcript

import (
	"context"
	"testing"
	"time"

	"negobot/internal/model"
)

func TestNewIDOrdering(t *testing.T) {
	earlier := NewID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewID(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if !(earlier < later) {
		t.Errorf("ULIDs not time-ordered: %s >= %s", earlier, later)
	}
	if len(earlier) != 26 {
		t.Errorf("ULID length = %d, want 26", len(earlier))
	}
}

func TestMemoryRecorder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	offer := int64(2000000)
	records := []model.TurnRecord{
		{ID: "1", UserID: "asha@example.com", ProductID: 7, Intent: "state_offer", UserOffer: &offer},
		{ID: "2", UserID: "asha@example.com", ProductID: 9, Intent: "request_discount"},
		{ID: "3", UserID: "ravi@example.com", ProductID: 7, Intent: "browse"},
		{ID: "4", UserID: "asha@example.com", ProductID: 7, Intent: "accept_counter"},
	}
	for i := range records {
		if err := m.Record(ctx, &records[i]); err != nil {
			t.Fatal(err)
		}
	}

	// Newest first, filtered by user and product.
	got, err := m.Recent(ctx, "asha@example.com", 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].ID != "4" || got[1].ID != "1" {
		t.Errorf("wrong order: %s, %s", got[0].ID, got[1].ID)
	}

	// Product 0 means all products for the user.
	all, _ := m.Recent(ctx, "asha@example.com", 0, 10)
	if len(all) != 3 {
		t.Errorf("got %d records, want 3", len(all))
	}

	// Limit applies.
	limited, _ := m.Recent(ctx, "asha@example.com", 0, 1)
	if len(limited) != 1 || limited[0].ID != "4" {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoop()
	if err := n.Record(context.Background(), &model.TurnRecord{ID: "x"}); err != nil {
		t.Fatal(err)
	}
	got, err := n.Recent(context.Background(), "anyone", 0, 5)
	if err != nil || got != nil {
		t.Errorf("noop Recent = (%v, %v), want (nil, nil)", got, err)
	}
}
