// Package audit owns the decision log: an append-only, timestamp-ordered
// record of every classification. There is deliberately no update or delete
// anywhere in this package; that absence is the integrity guarantee.
package audit

import (
	"context"
	"time"

	"casetrail/internal/domain"
)

// Filter narrows a decision log query. Zero values mean "no constraint".
type Filter struct {
	CaseID    string
	RiskLevel domain.RiskLevel
	From      time.Time
	To        time.Time
}

// Matches reports whether a record satisfies the filter.
func (f Filter) Matches(r domain.DecisionRecord) bool {
	if f.CaseID != "" && r.CaseID != f.CaseID {
		return false
	}
	if f.RiskLevel != "" && r.Verdict.RiskLevel != f.RiskLevel {
		return false
	}
	if !f.From.IsZero() && r.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Timestamp.After(f.To) {
		return false
	}
	return true
}

// Store persists decision records. Append assigns the record identifier and
// the timestamp; callers never pick either. Implementations must serialize
// appends so identifiers stay strictly increasing and per-case timestamps
// never decrease, even under concurrent callers.
type Store interface {
	Append(ctx context.Context, record domain.DecisionRecord) (domain.DecisionRecord, error)
	Query(ctx context.Context, filter Filter) ([]domain.DecisionRecord, error)
}

// Stats summarizes the decision log for dashboards.
type Stats struct {
	Total   int                          `json:"total"`
	ByRisk  map[domain.RiskLevel]int     `json:"by_risk"`
	Percent map[domain.RiskLevel]float64 `json:"percent"`
}
