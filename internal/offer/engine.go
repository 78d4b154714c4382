// Package offer computes the minimum acceptable price for a product under
// the current negotiation policy and turns a user offer into a decision.
// Everything here is a pure function of its inputs: no I/O, no clock, no
// shared state, so a negotiation turn can be replayed byte-for-byte.
package offer

import (
	"math"

	"negobot/internal/model"
	"negobot/internal/policy"
)

// MinimumPrice computes the lowest price the engine will accept or
// counter-offer for the product under the given policy snapshot.
//
// The banded stock discount proposes a price, but floors dominate: the
// result is max(banded price, policy floor, explicit per-product floor),
// rounded to the policy's rounding step. Rounding never dips below the
// unrounded floor maximum.
func MinimumPrice(p *model.Product, pol policy.Policy) (int64, model.ReasoningTag, error) {
	if err := p.Validate(); err != nil {
		return 0, "", err
	}

	pct, bandTag := discountBand(p.Stock, pol)
	banded := applyFraction(p.Price, 1-pct)
	policyFloor := applyFraction(p.Price, pol.MinPriceFloorRatio)

	minimum, tag := banded, bandTag
	if policyFloor > minimum {
		minimum, tag = policyFloor, model.ReasonPolicyFloor
	}
	if p.HasMinPrice() && p.MinPrice > minimum {
		minimum, tag = p.MinPrice, model.ReasonExplicitFloor
	}

	// Hard floor the rounding must not cross.
	floor := policyFloor
	if p.HasMinPrice() && p.MinPrice > floor {
		floor = p.MinPrice
	}

	rounded := model.RoundToStep(minimum, pol.RoundingStep)
	if rounded < floor {
		rounded += pol.RoundingStep
	}
	return rounded, tag, nil
}

// Decide resolves a user offer against the computed minimum.
// A nil offer is a bare discount request ("give me a discount") and is
// always countered at the minimum. An offer at or above the minimum is
// accepted at the user's own price - never counter below what the user
// already put on the table.
func Decide(userOffer *int64, minimum int64, tag model.ReasoningTag) model.OfferDecision {
	if userOffer != nil && *userOffer >= minimum {
		return model.OfferDecision{
			Outcome:       model.OutcomeAccepted,
			ResolvedPrice: *userOffer,
			MinimumPrice:  minimum,
			Reasoning:     tag,
		}
	}
	return model.OfferDecision{
		Outcome:       model.OutcomeCountered,
		ResolvedPrice: minimum,
		MinimumPrice:  minimum,
		Reasoning:     tag,
	}
}

// discountBand maps stock to the applicable discount fraction.
// stock > high threshold: deepest discount; between thresholds inclusive:
// mid; below low threshold: shallowest.
func discountBand(stock int, pol policy.Policy) (float64, model.ReasoningTag) {
	switch {
	case stock > pol.HighStockThreshold:
		return pol.HighStockDiscountPct, model.ReasonHighStockBand
	case stock >= pol.LowStockThreshold:
		return pol.MidStockDiscountPct, model.ReasonMidStockBand
	default:
		return pol.LowStockDiscountPct, model.ReasonLowStockBand
	}
}

// applyFraction multiplies a paise amount by a fraction, rounding to the
// nearest paisa.
func applyFraction(paise int64, frac float64) int64 {
	return int64(math.Round(float64(paise) * frac))
}
