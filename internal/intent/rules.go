package intent

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Rules is the deterministic keyword/number classifier. It is the
// reference behavior for the taxonomy and the fallback when the model
// collaborator is unavailable.
type Rules struct{}

// NewRules creates the rule-based classifier.
func NewRules() *Rules {
	return &Rules{}
}

// Keyword tables. Matched against the lowercased utterance; multi-word
// phrases are substring matches, single words are token matches so that
// "deal" does not fire inside "no deal" handled earlier.
var (
	rejectPhrases = []string{
		"no deal", "too high", "too much", "too costly", "too expensive",
		"forget it", "not interested", "no thanks", "leave it", "never mind",
	}
	rejectWords = []string{
		"no", "nope", "nah",
	}
	acceptPhrases = []string{
		"i'll take", "i will take", "ill take", "sounds good", "works for me",
	}
	acceptWords = []string{
		"deal", "done", "accept", "agreed", "okay", "ok", "yes", "fine", "sure",
	}
	discountWords = []string{
		"discount", "offer", "cheap", "cheaper", "less", "reduce", "lower",
		"negotiate", "nego", "bargain", "taggesthava", "tagginchu",
	}
	greetingWords = []string{
		"hi", "hello", "hey", "hai", "namaste", "vanakkam",
	}
	greetingPhrases = []string{
		"good morning", "good afternoon", "good evening",
	}
	browseWords = []string{
		"show", "search", "find", "browse", "recommend", "suggest",
		"looking", "want", "need", "have",
	}
)

// amountPattern matches currency amounts: an optional rupee marker, digits
// with optional comma grouping and decimals, and an optional thousands
// suffix ("20k", "25 thousand").
var amountPattern = regexp.MustCompile(`(?:₹|rs\.?\s*|inr\s*)?(\d[\d,]*(?:\.\d+)?)\s*(k\b|thousand\b)?`)

// Classify resolves the utterance with fixed precedence: a numeric amount
// always wins (the user is stating a price), then explicit rejection,
// acceptance, discount requests, greetings, and browse phrasing. Anything
// left is Unknown.
func (r *Rules) Classify(_ context.Context, utterance string) (Classification, error) {
	text := normalize(utterance)
	if text == "" {
		return Classification{Intent: Unknown}, nil
	}

	if amount, ok := extractAmount(text); ok {
		return Classification{Intent: StateOffer, Amount: &amount}, nil
	}
	if containsAny(text, rejectPhrases) || hasToken(text, rejectWords) {
		return Classification{Intent: RejectCounter}, nil
	}
	if containsAny(text, acceptPhrases) || hasToken(text, acceptWords) {
		return Classification{Intent: AcceptCounter}, nil
	}
	if hasToken(text, discountWords) {
		return Classification{Intent: RequestDiscount}, nil
	}
	if containsAny(text, greetingPhrases) || hasToken(text, greetingWords) {
		return Classification{Intent: Greeting}, nil
	}
	if hasToken(text, browseWords) {
		return Classification{Intent: Browse, Query: strings.TrimSpace(utterance)}, nil
	}
	return Classification{Intent: Unknown}, nil
}

// normalize lowercases the utterance and rewrites Telugu-script digits
// (U+0C66..U+0C6F) to ASCII so both numeral systems parse identically.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r >= '౦' && r <= '౯' {
			r = '0' + (r - '౦')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// extractAmount finds the first currency amount in the normalized text and
// returns it in paise. Amounts under one rupee are ignored as noise.
func extractAmount(text string) (int64, bool) {
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			value *= 1000
		}
		if value < 1 {
			continue
		}
		return int64(math.Round(value * 100)), true
	}
	return 0, false
}

// containsAny reports whether any phrase appears as a substring.
func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// hasToken reports whether any word appears as a whole token.
func hasToken(text string, words []string) bool {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	for _, tok := range tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}
