package model

// Outcome is the engine's verdict on a single negotiation turn.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeCountered Outcome = "countered"
	OutcomeRejected  Outcome = "rejected"
)

// ReasoningTag explains which policy term produced the minimum price.
type ReasoningTag string

const (
	// Stock-band discounts: the banded discount formula was the binding term.
	ReasonHighStockBand ReasoningTag = "high_stock_band"
	ReasonMidStockBand  ReasoningTag = "mid_stock_band"
	ReasonLowStockBand  ReasoningTag = "low_stock_band"

	// Floors: a floor dominated the banded discount.
	ReasonPolicyFloor   ReasoningTag = "policy_floor"
	ReasonExplicitFloor ReasoningTag = "explicit_floor"
)

// OfferDecision is the immutable result of one negotiation turn.
// ResolvedPrice is set for accepted and countered outcomes; MinimumPrice
// is the computed floor for this turn regardless of outcome.
type OfferDecision struct {
	Outcome       Outcome      `json:"outcome"`
	ResolvedPrice int64        `json:"resolved_price,omitempty"`
	MinimumPrice  int64        `json:"minimum_acceptable_price"`
	Reasoning     ReasoningTag `json:"reasoning"`
}
