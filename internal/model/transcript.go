package model

import "time"

// TurnRecord is the structured record emitted for every resolved chat turn.
// Persisted by the transcript recorder for history and audit; schema mirrors
// the conversations table.
type TurnRecord struct {
	ID            string    `json:"id"` // ULID, lexically sortable by time
	Timestamp     time.Time `json:"timestamp"`
	UserID        string    `json:"user_id"`
	ProductID     int64     `json:"product_id,omitempty"`
	Intent        string    `json:"intent"`
	UserOffer     *int64    `json:"user_offer,omitempty"`
	Outcome       Outcome   `json:"outcome,omitempty"`
	ResolvedPrice *int64    `json:"resolved_price,omitempty"`
	TurnCount     int       `json:"turn_count"`
	Utterance     string    `json:"utterance"`
	Reply         string    `json:"reply"`
}
