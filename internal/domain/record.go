package domain

import "time"

// SLAStatus is derived from case timing at decision time and stored on the
// decision record, never independently.
type SLAStatus string

const (
	SLAOnTrack  SLAStatus = "ON_TRACK"
	SLAAtRisk   SLAStatus = "AT_RISK"
	SLABreached SLAStatus = "BREACHED"
)

// DecisionRecord is one immutable entry in the audit trail. Corrections are
// new records; nothing updates or deletes an existing one.
type DecisionRecord struct {
	RecordID  uint64    `json:"record_id"` // strictly increasing across the log
	CaseID    string    `json:"case_id"`
	Verdict   Verdict   `json:"verdict"`
	SLAStatus SLAStatus `json:"sla_status"`
	Timestamp time.Time `json:"timestamp"` // non-decreasing per case
}
