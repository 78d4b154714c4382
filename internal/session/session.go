// Package session tracks per (user, product) negotiation state across chat
// turns. Sessions are an explicit keyed store injected into the chat
// pipeline, so the state machine is testable without any UI or transport
// harness. A resolved or abandoned session is immutable; haggling again
// over the same product opens a fresh instance while the old one stays
// behind for audit.
package session

import (
	"time"

	"github.com/google/uuid"

	"negobot/internal/model"
)

// Status is the lifecycle state of a negotiation session.
// Only Open is live; the rest are terminal.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusAbandoned Status = "abandoned"
)

// Session is the mutable negotiation state for one (user, product) pair.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ProductID     int64     `json:"product_id"`
	Status        Status    `json:"status"`
	TurnCount     int       `json:"turn_count"`
	LastUserOffer *int64    `json:"last_offer_by_user,omitempty"`
	LastCounter   *int64    `json:"last_counter_by_engine,omitempty"`
	ResolvedPrice *int64    `json:"resolved_price,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// newSession opens a fresh session for the pair.
func newSession(userID string, productID int64) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the session can no longer transition.
func (s *Session) Terminal() bool {
	return s.Status != StatusOpen
}

// guardOpen rejects any input to a terminal session without mutating it.
func (s *Session) guardOpen() error {
	if s.Terminal() {
		return model.NewSessionClosedError(string(s.Status))
	}
	return nil
}

// ApplyDecision records an offer-engine decision as one negotiation turn.
// Accepted resolves the session; Countered keeps it open with the standing
// counter recorded. Rejected decisions do not come from the engine and are
// refused here.
func (s *Session) ApplyDecision(userOffer *int64, d model.OfferDecision) error {
	if err := s.guardOpen(); err != nil {
		return err
	}

	switch d.Outcome {
	case model.OutcomeAccepted:
		price := d.ResolvedPrice
		s.Status = StatusAccepted
		s.ResolvedPrice = &price
	case model.OutcomeCountered:
		counter := d.ResolvedPrice
		s.LastCounter = &counter
	default:
		return model.NewInternalError(nil)
	}

	s.LastUserOffer = userOffer
	s.TurnCount++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AcceptCounter resolves the session at the standing counter-offer.
// Without a standing counter there is nothing to accept and the session
// stays as it was.
func (s *Session) AcceptCounter() error {
	if err := s.guardOpen(); err != nil {
		return err
	}
	if s.LastCounter == nil {
		return model.NewValidationError("session", "no counter-offer to accept")
	}
	price := *s.LastCounter
	s.Status = StatusAccepted
	s.ResolvedPrice = &price
	s.TurnCount++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject closes the session on an explicit user rejection.
func (s *Session) Reject() error {
	if err := s.guardOpen(); err != nil {
		return err
	}
	s.Status = StatusRejected
	s.TurnCount++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Abandon closes the session when the user walks off to a different
// product context without resolving. Abandoning a terminal session is a
// no-op rather than an error: the caller is sweeping, not negotiating.
func (s *Session) Abandon() {
	if s.Terminal() {
		return
	}
	s.Status = StatusAbandoned
	s.UpdatedAt = time.Now().UTC()
}
