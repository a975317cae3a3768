package domain

import "fmt"

// Priority ranks how urgently a collection case should be worked.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ParsePriority normalizes a priority string to its canonical form.
func ParsePriority(s string) (Priority, error) {
	switch Priority(normalizeEnum(s)) {
	case PriorityCritical:
		return PriorityCritical, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Case is the read-only input to the classification pipeline. It is owned by
// the external case store; the core never mutates it.
type Case struct {
	ID            string   `json:"case_id"`
	CustomerName  string   `json:"customer_name"`
	Amount        float64  `json:"amount"` // outstanding, INR
	DaysOverdue   int      `json:"days_overdue"`
	SLATargetDays int      `json:"sla_target_days"`
	Priority      Priority `json:"priority"`
	Region        string   `json:"region"`
	Attempts      int      `json:"past_attempts"`
	AgencyRef     string   `json:"assigned_agency"`
}

// Validate rejects cases that break the documented invariants. A broken case
// is a data problem upstream, not something the pipeline should paper over.
func (c Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("case id is required")
	}
	if c.Amount < 0 {
		return fmt.Errorf("case %s: amount must be non-negative, got %v", c.ID, c.Amount)
	}
	if c.DaysOverdue < 0 {
		return fmt.Errorf("case %s: days overdue must be non-negative, got %d", c.ID, c.DaysOverdue)
	}
	return nil
}
