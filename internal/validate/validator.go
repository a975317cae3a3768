// Package validate turns untrusted oracle output into a domain.Verdict. Every
// verdict in the system passes through here exactly once; nothing downstream
// ever touches raw oracle payloads.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"casetrail/internal/domain"
	"casetrail/internal/oracle"
)

// Error is a validation rejection. It keeps the raw payload so a pipeline
// fault can surface exactly what the oracle said for diagnosis.
type Error struct {
	Raw    []byte
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("verdict validation: %s", e.Detail)
}

// Validator normalizes raw verdicts. Clamping is a deployment choice: when
// off, an out-of-range confidence is a rejection instead of a repair.
type Validator struct {
	clamp bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithClamping controls whether out-of-range confidence values are clamped.
func WithClamping(clamp bool) Option {
	return func(v *Validator) { v.clamp = clamp }
}

func New(opts ...Option) *Validator {
	v := &Validator{clamp: true}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// rawShape is the loose decode target. Confidence and recovery percentage are
// `any` because miscalibrated oracles have been seen returning them as strings.
type rawShape struct {
	RiskLevel           string `json:"risk_level"`
	Confidence          any    `json:"confidence"`
	Reason              string `json:"reason"`
	RecommendedAction   string `json:"recommended_action"`
	RecoveryProbability string `json:"recovery_probability"`
	RecoveryPercentage  any    `json:"recovery_percentage"`
}

// defaultConfidence is assumed when the oracle omits the field entirely.
// Omission is miscalibration, not an unusable verdict.
const defaultConfidence = 0.8

// Validate checks the raw verdict in order: structural shape, risk level,
// confidence, then text fields. Only numeric clamping and whitespace trimming
// ever modify the content; risk level and reasoning pass through verbatim.
func (v *Validator) Validate(raw oracle.RawVerdict) (domain.Verdict, error) {
	var shape rawShape
	if err := json.Unmarshal(raw.Payload, &shape); err != nil {
		return domain.Verdict{}, &Error{Raw: raw.Payload, Detail: fmt.Sprintf("payload is not a JSON object: %v", err)}
	}

	level, err := domain.ParseRiskLevel(shape.RiskLevel)
	if err != nil {
		return domain.Verdict{}, &Error{Raw: raw.Payload, Detail: err.Error()}
	}

	confidence, err := v.normalizeConfidence(shape.Confidence)
	if err != nil {
		return domain.Verdict{}, &Error{Raw: raw.Payload, Detail: err.Error()}
	}

	reason := strings.TrimSpace(shape.Reason)
	action := strings.TrimSpace(shape.RecommendedAction)
	if reason == "" {
		return domain.Verdict{}, &Error{Raw: raw.Payload, Detail: "reason is empty"}
	}
	if action == "" {
		return domain.Verdict{}, &Error{Raw: raw.Payload, Detail: "recommended_action is empty"}
	}

	verdict := domain.Verdict{
		RiskLevel:         level,
		Confidence:        confidence,
		Reason:            reason,
		RecommendedAction: action,
		Source:            raw.Source,
	}
	v.fillRecovery(&verdict, shape)
	return verdict, nil
}

func (v *Validator) normalizeConfidence(value any) (float64, error) {
	var confidence float64
	switch c := value.(type) {
	case nil:
		return defaultConfidence, nil
	case float64:
		confidence = c
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0, fmt.Errorf("confidence %q is not a number", c)
		}
		confidence = parsed
	default:
		return 0, fmt.Errorf("confidence has unsupported type %T", value)
	}

	if confidence < 0 || confidence > 1 {
		if !v.clamp {
			return 0, fmt.Errorf("confidence %v outside [0, 1]", confidence)
		}
		if confidence < 0 {
			confidence = 0
		} else {
			confidence = 1
		}
	}
	return confidence, nil
}

// recoveryPercentByBand mirrors the recovery scale used in oracle prompts.
var recoveryPercentByBand = map[domain.RecoveryBand]int{
	domain.RecoveryVeryHigh: 85,
	domain.RecoveryHigh:     70,
	domain.RecoveryModerate: 50,
	domain.RecoveryLow:      30,
	domain.RecoveryVeryLow:  15,
}

// recoveryByRisk infers the band when the oracle omits it.
var recoveryByRisk = map[domain.RiskLevel]domain.RecoveryBand{
	domain.RiskLow:    domain.RecoveryHigh,
	domain.RiskMedium: domain.RecoveryModerate,
	domain.RiskHigh:   domain.RecoveryLow,
}

// fillRecovery is repair, not rejection: the recovery prediction is
// supplemental, so bad values degrade to inference rather than failing an
// otherwise usable verdict.
func (v *Validator) fillRecovery(verdict *domain.Verdict, shape rawShape) {
	band := domain.RecoveryBand(strings.ToUpper(strings.TrimSpace(shape.RecoveryProbability)))
	if _, known := recoveryPercentByBand[band]; !known {
		band = recoveryByRisk[verdict.RiskLevel]
	}
	verdict.RecoveryProbability = band

	percent, ok := asInt(shape.RecoveryPercentage)
	if !ok {
		percent = recoveryPercentByBand[band]
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	verdict.RecoveryPercent = percent
}

func asInt(value any) (int, bool) {
	switch n := value.(type) {
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
