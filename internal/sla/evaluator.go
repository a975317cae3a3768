// Package sla derives the service-level status of a case from its timing
// attributes. The evaluation is pure: no I/O, no clock reads.
package sla

import (
	"fmt"

	"casetrail/internal/domain"
)

// DefaultBuffer is the AT_RISK window as a fraction of the SLA target.
const DefaultBuffer = 0.20

// Evaluator computes SLA status. The buffer fraction is fixed at
// construction so every evaluation in a pipeline run uses the same policy.
type Evaluator struct {
	buffer float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBuffer overrides the AT_RISK buffer fraction.
func WithBuffer(f float64) Option {
	return func(e *Evaluator) { e.buffer = f }
}

func NewEvaluator(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(e)
	}
	if e.buffer <= 0 || e.buffer >= 1 {
		return nil, fmt.Errorf("sla buffer must be in (0, 1), got %v", e.buffer)
	}
	return e, nil
}

// Evaluate maps days overdue against the SLA target. A non-positive target is
// a configuration error, never silently defaulted: the status would be
// meaningless and the audit trail must not contain meaningless statuses.
func (e *Evaluator) Evaluate(daysOverdue, targetDays int) (domain.SLAStatus, error) {
	if targetDays <= 0 {
		return "", fmt.Errorf("sla target days must be positive, got %d", targetDays)
	}
	if daysOverdue < 0 {
		return "", fmt.Errorf("days overdue must be non-negative, got %d", daysOverdue)
	}

	remaining := targetDays - daysOverdue
	switch {
	case remaining <= 0:
		return domain.SLABreached, nil
	case float64(remaining) <= e.buffer*float64(targetDays):
		return domain.SLAAtRisk, nil
	default:
		return domain.SLAOnTrack, nil
	}
}
