package http

import (
	"fmt"
	"net/http"
	"time"

	"casetrail/internal/audit"
	"casetrail/internal/domain"
	"casetrail/internal/pipeline"
)

// decisionResponse is the wire shape of one audit record.
type decisionResponse struct {
	RecordID            uint64    `json:"record_id"`
	CaseID              string    `json:"case_id"`
	RiskLevel           string    `json:"risk_level"`
	Confidence          float64   `json:"confidence"`
	Reason              string    `json:"reason"`
	RecommendedAction   string    `json:"recommended_action"`
	Source              string    `json:"source"`
	RecoveryProbability string    `json:"recovery_probability"`
	RecoveryPercent     int       `json:"recovery_percentage"`
	SLAStatus           string    `json:"sla_status"`
	Timestamp           time.Time `json:"timestamp"`
}

func fromRecord(rec domain.DecisionRecord) decisionResponse {
	return decisionResponse{
		RecordID:            rec.RecordID,
		CaseID:              rec.CaseID,
		RiskLevel:           string(rec.Verdict.RiskLevel),
		Confidence:          rec.Verdict.Confidence,
		Reason:              rec.Verdict.Reason,
		RecommendedAction:   rec.Verdict.RecommendedAction,
		Source:              string(rec.Verdict.Source),
		RecoveryProbability: string(rec.Verdict.RecoveryProbability),
		RecoveryPercent:     rec.Verdict.RecoveryPercent,
		SLAStatus:           string(rec.SLAStatus),
		Timestamp:           rec.Timestamp,
	}
}

// classifyResponse wraps a decision with its persistence state. Persisted is
// false only on the 202 path where the audit append failed.
type classifyResponse struct {
	Decision  decisionResponse `json:"decision"`
	Persisted bool             `json:"persisted"`
}

func fromOutcome(outcome *pipeline.Outcome) classifyResponse {
	return classifyResponse{
		Decision:  fromRecord(outcome.Record),
		Persisted: outcome.Persisted,
	}
}

type casesResponse struct {
	Cases []domain.Case `json:"cases"`
	Count int           `json:"count"`
}

type decisionsResponse struct {
	Decisions []decisionResponse `json:"decisions"`
	Count     int                `json:"count"`
}

type statsResponse struct {
	Total   int                `json:"total_decisions"`
	ByRisk  map[string]int     `json:"by_risk_level"`
	Percent map[string]float64 `json:"risk_distribution_percent"`
}

func fromStats(s audit.Stats) statsResponse {
	resp := statsResponse{
		Total:   s.Total,
		ByRisk:  make(map[string]int, len(s.ByRisk)),
		Percent: make(map[string]float64, len(s.Percent)),
	}
	for level, n := range s.ByRisk {
		resp.ByRisk[string(level)] = n
	}
	for level, pct := range s.Percent {
		resp.Percent[string(level)] = pct
	}
	return resp
}

// filterFromQuery parses the decision query parameters. Times are RFC 3339.
func filterFromQuery(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{CaseID: q.Get("case_id")}

	if raw := q.Get("risk_level"); raw != "" {
		level, err := domain.ParseRiskLevel(raw)
		if err != nil {
			return audit.Filter{}, fmt.Errorf("risk_level: %w", err)
		}
		filter.RiskLevel = level
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, fmt.Errorf("from: must be RFC 3339")
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, fmt.Errorf("to: must be RFC 3339")
		}
		filter.To = to
	}
	return filter, nil
}
