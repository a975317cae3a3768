package domain

import (
	"fmt"
	"strings"
)

// RiskLevel enumerates the classification a case can receive.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// ParseRiskLevel accepts any casing and returns the canonical level.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskHigh:
		return RiskHigh, nil
	case RiskMedium:
		return RiskMedium, nil
	case RiskLow:
		return RiskLow, nil
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// VerdictSource records which strategy produced a verdict.
type VerdictSource string

const (
	SourceOracle   VerdictSource = "ORACLE"
	SourceFallback VerdictSource = "FALLBACK"
)

// RecoveryBand is a coarse recovery-likelihood scale. It is supplemental to
// the risk level and inferred from it when the oracle omits it.
type RecoveryBand string

const (
	RecoveryVeryHigh RecoveryBand = "VERY HIGH"
	RecoveryHigh     RecoveryBand = "HIGH"
	RecoveryModerate RecoveryBand = "MODERATE"
	RecoveryLow      RecoveryBand = "LOW"
	RecoveryVeryLow  RecoveryBand = "VERY LOW"
)

// Verdict is a fully validated classification. Downstream code only ever sees
// this type; whatever the oracle actually returned lives in oracle.RawVerdict
// until the validator has normalized it.
type Verdict struct {
	RiskLevel         RiskLevel     `json:"risk_level"`
	Confidence        float64       `json:"confidence"` // [0.0, 1.0]
	Reason            string        `json:"reason"`
	RecommendedAction string        `json:"recommended_action"`
	Source            VerdictSource `json:"source"`

	// Recovery prediction, carried from the oracle when present and inferred
	// from the risk level when absent.
	RecoveryProbability RecoveryBand `json:"recovery_probability"`
	RecoveryPercent     int          `json:"recovery_percentage"` // [0, 100]
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
