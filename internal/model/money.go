package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePaise converts decimal string amounts (rupees) to paise (int64).
// Use for inputs that carry amounts in major currency units (e.g., "25000.00" = ₹25,000).
// Shared utility used by the catalog loader and handlers for consistent money handling.
// Handles edge cases: empty strings, missing decimals, large values.
// Examples: "25000.00" → 2500000, "99.5" → 9950, "" → 0
func ParsePaise(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return int64(math.Round(f * 100))
}

// PaiseFromRupees converts a whole-rupee amount to paise.
func PaiseFromRupees(r int64) int64 {
	return r * 100
}

// RoundToStep rounds a paise amount to the nearest multiple of step.
// Ties round up. A step of 0 or less leaves the amount unchanged.
// Example: step 1000 (₹10) rounds 2124990 → 2125000.
func RoundToStep(paise, step int64) int64 {
	if step <= 0 {
		return paise
	}
	rem := paise % step
	if rem*2 >= step {
		return paise - rem + step
	}
	return paise - rem
}

// FormatRupees renders a paise amount as a display string with the rupee
// sign and Indian digit grouping: 2500000 → "₹25,000", 123456789 → "₹12,34,567.89".
// Fractional paise are omitted when zero, matching catalog display prices.
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees := paise / 100
	frac := paise % 100

	grouped := groupIndian(strconv.FormatInt(rupees, 10))
	if frac == 0 {
		return fmt.Sprintf("%s₹%s", sign, grouped)
	}
	return fmt.Sprintf("%s₹%s.%02d", sign, grouped, frac)
}

// groupIndian inserts commas per the Indian numbering system:
// last three digits, then groups of two ("1234567" → "12,34,567").
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := digits[:n-3]
	// Leading group of one or two digits, then pairs
	first := len(head) % 2
	if first == 0 {
		first = 2
	}
	b.WriteString(head[:first])
	for i := first; i < len(head); i += 2 {
		b.WriteByte(',')
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(digits[n-3:])
	return b.String()
}
