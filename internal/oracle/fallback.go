package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"casetrail/internal/domain"
	"casetrail/internal/semantic"
)

// Fallback is the deterministic rule-based strategy. It has no external
// dependencies and is total: any case that passed its invariants gets a
// well-formed verdict. It serves both as the no-credential mode and as the
// recovery path when the remote oracle fails.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

// fallbackPayload mirrors the wire shape the remote oracle is asked for, so
// the validator treats both strategies identically.
type fallbackPayload struct {
	RiskLevel           string  `json:"risk_level"`
	Confidence          float64 `json:"confidence"`
	Reason              string  `json:"reason"`
	RecommendedAction   string  `json:"recommended_action"`
	RecoveryProbability string  `json:"recovery_probability"`
	RecoveryPercentage  int     `json:"recovery_percentage"`
}

// Confidence bands per rule. The in-band position is a monotonic function of
// how far the inputs exceed the rule's thresholds, so identical inputs always
// reproduce identical confidence. Exact values are pinned by the test fixtures.
const (
	rule1Low, rule1High = 0.85, 0.95
	rule2Low, rule2High = 0.70, 0.85
	rule3Low, rule3High = 0.55, 0.70
	rule4Low, rule4High = 0.40, 0.55
)

// Classify applies the rule chain in fixed priority order, first match wins.
func (f *Fallback) Classify(_ context.Context, sc semantic.Context) (RawVerdict, error) {
	p := f.evaluate(sc)

	payload, err := json.Marshal(p)
	if err != nil {
		return RawVerdict{}, fmt.Errorf("marshal fallback verdict: %w", err)
	}
	return RawVerdict{Source: domain.SourceFallback, Payload: payload}, nil
}

func (f *Fallback) evaluate(sc semantic.Context) fallbackPayload {
	amount, days, attempts := sc.Amount, sc.DaysOverdue, sc.Attempts

	// Rule 1: very high amount, critically overdue, repeated failed attempts.
	if amount > 500_000 && days > 120 && attempts >= 3 {
		excess := (saturate((amount-500_000)/500_000) +
			saturate(float64(days-120)/120) +
			saturate(float64(attempts-3)/3)) / 3
		return fallbackPayload{
			RiskLevel:           string(domain.RiskHigh),
			Confidence:          band(rule1Low, rule1High, excess),
			Reason:              "Very high outstanding amount, critically overdue, with repeated failed recovery attempts.",
			RecommendedAction:   "Escalate to legal team for formal notice; evaluate asset recovery options.",
			RecoveryProbability: string(domain.RecoveryVeryLow),
			RecoveryPercentage:  15,
		}
	}

	// Rule 2: high amount and long overdue.
	if amount > 200_000 && days > 60 {
		excess := (saturate((amount-200_000)/300_000) +
			saturate(float64(days-60)/60)) / 2
		return fallbackPayload{
			RiskLevel:           string(domain.RiskHigh),
			Confidence:          band(rule2Low, rule2High, excess),
			Reason:              "High outstanding amount combined with an extended overdue period.",
			RecommendedAction:   "Assign a senior recovery agent and issue a formal demand letter.",
			RecoveryProbability: string(domain.RecoveryLow),
			RecoveryPercentage:  30,
		}
	}

	// Rule 3: aging case or prior failed attempts.
	if days > 90 || attempts >= 2 {
		excess := max(
			saturate(float64(days-90)/90),
			saturate(float64(attempts-2)/4),
		)
		return fallbackPayload{
			RiskLevel:           string(domain.RiskMedium),
			Confidence:          band(rule3Low, rule3High, excess),
			Reason:              "Case is aging or has prior unsuccessful recovery attempts; needs proactive follow-up.",
			RecommendedAction:   "Assign to a recovery agent for personal follow-up; offer payment plan options.",
			RecoveryProbability: string(domain.RecoveryModerate),
			RecoveryPercentage:  55,
		}
	}

	// Rule 4: everything else. The in-band position tracks how close the case
	// is to tripping the rules above, so growth across the log stays monotone.
	excess := (saturate(float64(days)/90) +
		saturate(float64(attempts)/2) +
		saturate(amount/200_000)) / 3
	return fallbackPayload{
		RiskLevel:           string(domain.RiskLow),
		Confidence:          band(rule4Low, rule4High, excess),
		Reason:              "Recently overdue with a small amount; customer likely to pay after a reminder.",
		RecommendedAction:   "Send an automated payment reminder and schedule a follow-up call.",
		RecoveryProbability: string(domain.RecoveryVeryHigh),
		RecoveryPercentage:  85,
	}
}

// band places a saturating excess ratio inside [low, high). The top of the
// band is reserved for the asymptote so two bands never produce equal values.
func band(low, high, excess float64) float64 {
	return low + (high-low)*0.99*saturate(excess)
}

func saturate(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
