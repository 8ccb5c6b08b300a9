package safety

import (
	"context"
	"fmt"
	"log"
)

// Classifier scores text per moderation category.
// Severity scale is 0-4. Implemented by the Azure Content Safety client.
type Classifier interface {
	AnalyzeText(ctx context.Context, text string) (map[string]int, error)
}

// Thresholds maps a moderation category to the minimum severity that blocks.
// A threshold of 0 is zero tolerance: any detected severity blocks.
type Thresholds map[string]int

// DefaultThresholds returns the recommended per-category limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		"hate":      0,
		"sexual":    2,
		"violence":  4,
		"self_harm": 4,
	}
}

// ErrClassifierUnavailable marks a moderation infrastructure failure.
// The gate still blocks (fail closed); the error is for logging and the
// caller's error taxonomy.
var ErrClassifierUnavailable = fmt.Errorf("content classifier unavailable")

// Gate screens text on both sides of a conversation turn.
//
// INPUT evaluations run the pattern screen first and short-circuit on a
// match without calling the classifier. OUTPUT evaluations skip the
// pattern screen and tighten each category threshold by one level
// (minimum 1), matching the original strict output mode.
type Gate struct {
	classifier Classifier
	thresholds Thresholds
	logger     *log.Logger
}

// NewGate creates a safety gate. A nil thresholds map falls back to the
// defaults.
func NewGate(classifier Classifier, thresholds Thresholds, logger *log.Logger) *Gate {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	return &Gate{
		classifier: classifier,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Evaluate screens text for the given role.
//
// The returned error is non-nil only when the classifier call itself
// failed; the verdict is already a block in that case. The gate never
// fails open: a classifier outage blocks the turn.
func (g *Gate) Evaluate(ctx context.Context, text string, role Role) (Verdict, error) {
	if role == RoleInput {
		if pattern, found := DetectJailbreak(text); found {
			g.logger.Printf("[SAFETY] Jailbreak pattern matched: %q", pattern)
			return Verdict{
				Allowed:        false,
				Reason:         ReasonJailbreakPattern,
				MatchedPattern: pattern,
			}, nil
		}
	}

	scores, err := g.classifier.AnalyzeText(ctx, text)
	if err != nil {
		g.logger.Printf("[SAFETY] Classifier call failed, blocking (fail closed): %v", err)
		return Verdict{Allowed: false, Reason: ReasonNone}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}

	verdict := Verdict{
		Allowed:        true,
		Reason:         ReasonNone,
		CategoryScores: scores,
	}

	for category, severity := range scores {
		threshold, known := g.thresholds[category]
		if !known {
			// Unknown categories get the most common default.
			threshold = 2
		}
		if role == RoleOutput {
			threshold = strictThreshold(threshold)
		}
		if severity > 0 && severity >= threshold {
			g.logger.Printf("[SAFETY] Category %s severity %d >= threshold %d", category, severity, threshold)
			verdict.Allowed = false
			verdict.Reason = ReasonContentCategory
		}
	}

	return verdict, nil
}

// strictThreshold tightens a category threshold by one level for output
// screening, never below 1.
func strictThreshold(t int) int {
	if t-1 < 1 {
		return 1
	}
	return t - 1
}
