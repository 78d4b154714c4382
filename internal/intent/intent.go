// Package intent maps free-text shopper utterances onto the fixed
// negotiation intent taxonomy. The rule-based classifier is the canonical
// deterministic path; a model-backed classifier implements the same
// contract and is wrapped with fallback-on-failure so both paths are
// behaviorally interchangeable for the caller.
package intent

import "context"

// Intent is one of the fixed negotiation intents.
type Intent string

const (
	// StateOffer carries a concrete price from the user ("I'll pay ₹20,000").
	StateOffer Intent = "state_offer"
	// RequestDiscount is a bare haggle with no number ("any discount?").
	RequestDiscount Intent = "request_discount"
	// AcceptCounter accepts the engine's standing counter-offer.
	AcceptCounter Intent = "accept_counter"
	// RejectCounter walks away from the standing counter-offer.
	RejectCounter Intent = "reject_counter"
	// Browse is product discovery; Query carries the search text.
	Browse Intent = "browse"
	// Greeting is small talk openers ("hi", "namaste").
	Greeting Intent = "greeting"
	// Unknown is the ambiguous case. Never an error: the caller decides
	// whether to re-prompt.
	Unknown Intent = "unknown"
)

// Classification is the result of classifying one utterance.
// Amount is in paise and set only for StateOffer; Query is set for Browse.
type Classification struct {
	Intent Intent `json:"intent"`
	Amount *int64 `json:"amount,omitempty"`
	Query  string `json:"query,omitempty"`
}

// Classifier turns an utterance into a Classification.
// Implementations must treat ambiguity as Unknown rather than failing;
// errors are reserved for transport-level problems (e.g. the model
// collaborator being unreachable).
type Classifier interface {
	Classify(ctx context.Context, utterance string) (Classification, error)
}
