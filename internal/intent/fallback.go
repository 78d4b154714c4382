package intent

import (
	"context"
	"log/slog"
)

// Fallback tries the primary (model-backed) classifier and falls back to
// the secondary on any error. The caller always gets a whole result from
// exactly one path - never a blend of the two.
type Fallback struct {
	primary   Classifier
	secondary Classifier
	logger    *slog.Logger
}

// NewFallback wraps primary with secondary as the error path.
// A nil primary short-circuits straight to secondary, which keeps wiring
// simple when no model API key is configured.
func NewFallback(primary, secondary Classifier, logger *slog.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Classify resolves the utterance through whichever path answers first.
func (f *Fallback) Classify(ctx context.Context, utterance string) (Classification, error) {
	if f.primary == nil {
		return f.secondary.Classify(ctx, utterance)
	}

	c, err := f.primary.Classify(ctx, utterance)
	if err == nil {
		return c, nil
	}

	f.logger.Warn("model classifier failed, using rule-based fallback",
		slog.String("error", err.Error()),
	)
	return f.secondary.Classify(ctx, utterance)
}
