// Package policy holds the admin-tunable negotiation thresholds and the
// store that guards them. The store hands out snapshots by value so a
// mid-flight admin update can never mix old and new thresholds within a
// single offer computation.
package policy

import (
	"fmt"

	"negobot/internal/model"
)

// Policy is the negotiation configuration read on every turn.
// Discount percentages are fractions of list price; RoundingStep is the
// currency granularity for counter-offers, in paise.
type Policy struct {
	HighStockThreshold   int     `json:"high_stock_threshold" yaml:"high_stock_threshold"`
	LowStockThreshold    int     `json:"low_stock_threshold" yaml:"low_stock_threshold"`
	HighStockDiscountPct float64 `json:"high_stock_discount_pct" yaml:"high_stock_discount_pct"`
	MidStockDiscountPct  float64 `json:"mid_stock_discount_pct" yaml:"mid_stock_discount_pct"`
	LowStockDiscountPct  float64 `json:"low_stock_discount_pct" yaml:"low_stock_discount_pct"`
	MinPriceFloorRatio   float64 `json:"min_price_floor_ratio" yaml:"min_price_floor_ratio"`
	RoundingStep         int64   `json:"rounding_step" yaml:"rounding_step"`
}

// Default returns the startup policy.
func Default() Policy {
	return Policy{
		HighStockThreshold:   15,
		LowStockThreshold:    5,
		HighStockDiscountPct: 0.15,
		MidStockDiscountPct:  0.10,
		LowStockDiscountPct:  0.05,
		MinPriceFloorRatio:   0.85,
		RoundingStep:         1000, // ₹10
	}
}

// Validate enforces the ordering invariant. Returns an INVALID_POLICY
// error naming the first offending field.
func (p Policy) Validate() error {
	if p.LowStockThreshold < 0 {
		return model.NewInvalidPolicyError("low_stock_threshold", "must be non-negative")
	}
	if p.HighStockThreshold < p.LowStockThreshold {
		return model.NewInvalidPolicyError("high_stock_threshold",
			fmt.Sprintf("must be >= low_stock_threshold (%d)", p.LowStockThreshold))
	}
	if p.LowStockDiscountPct < 0 {
		return model.NewInvalidPolicyError("low_stock_discount_pct", "must be non-negative")
	}
	if p.MidStockDiscountPct < p.LowStockDiscountPct {
		return model.NewInvalidPolicyError("mid_stock_discount_pct", "must be >= low_stock_discount_pct")
	}
	if p.HighStockDiscountPct < p.MidStockDiscountPct {
		return model.NewInvalidPolicyError("high_stock_discount_pct", "must be >= mid_stock_discount_pct")
	}
	if p.HighStockDiscountPct > 1 {
		return model.NewInvalidPolicyError("high_stock_discount_pct", "must be <= 1")
	}
	if p.MinPriceFloorRatio <= 0 || p.MinPriceFloorRatio > 1 {
		return model.NewInvalidPolicyError("min_price_floor_ratio", "must be in (0, 1]")
	}
	if p.RoundingStep <= 0 {
		return model.NewInvalidPolicyError("rounding_step", "must be positive")
	}
	return nil
}

// Patch is a partial policy update from an admin. Nil fields are left at
// their current value.
type Patch struct {
	HighStockThreshold   *int     `json:"high_stock_threshold,omitempty"`
	LowStockThreshold    *int     `json:"low_stock_threshold,omitempty"`
	HighStockDiscountPct *float64 `json:"high_stock_discount_pct,omitempty"`
	MidStockDiscountPct  *float64 `json:"mid_stock_discount_pct,omitempty"`
	LowStockDiscountPct  *float64 `json:"low_stock_discount_pct,omitempty"`
	MinPriceFloorRatio   *float64 `json:"min_price_floor_ratio,omitempty"`
	RoundingStep         *int64   `json:"rounding_step,omitempty"`
}

// apply merges the patch onto a policy copy.
func (pt Patch) apply(p Policy) Policy {
	if pt.HighStockThreshold != nil {
		p.HighStockThreshold = *pt.HighStockThreshold
	}
	if pt.LowStockThreshold != nil {
		p.LowStockThreshold = *pt.LowStockThreshold
	}
	if pt.HighStockDiscountPct != nil {
		p.HighStockDiscountPct = *pt.HighStockDiscountPct
	}
	if pt.MidStockDiscountPct != nil {
		p.MidStockDiscountPct = *pt.MidStockDiscountPct
	}
	if pt.LowStockDiscountPct != nil {
		p.LowStockDiscountPct = *pt.LowStockDiscountPct
	}
	if pt.MinPriceFloorRatio != nil {
		p.MinPriceFloorRatio = *pt.MinPriceFloorRatio
	}
	if pt.RoundingStep != nil {
		p.RoundingStep = *pt.RoundingStep
	}
	return p
}
