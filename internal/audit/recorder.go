package audit

import (
	"context"
	"fmt"
	"log/slog"

	"casetrail/internal/domain"
)

// Sink receives decision records after they are durably appended. Dashboards
// and downstream consumers hang off sinks; the store stays the source of truth.
type Sink interface {
	Publish(ctx context.Context, record domain.DecisionRecord) error
}

// Recorder is the write path of the audit trail. It appends through the
// store, then fans the record out to the sink channel without blocking the
// pipeline: fan-out is best-effort, the append is not.
type Recorder struct {
	store  Store
	outbox chan domain.DecisionRecord
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		outbox: make(chan domain.DecisionRecord, 256),
		logger: logger,
	}
}

// Append persists one decision and queues it for fan-out.
func (r *Recorder) Append(ctx context.Context, caseID string, verdict domain.Verdict, status domain.SLAStatus) (domain.DecisionRecord, error) {
	record, err := r.store.Append(ctx, domain.DecisionRecord{
		CaseID:    caseID,
		Verdict:   verdict,
		SLAStatus: status,
	})
	if err != nil {
		return domain.DecisionRecord{}, fmt.Errorf("append decision for case %s: %w", caseID, err)
	}

	select {
	case r.outbox <- record:
	default:
		// A full outbox never blocks or fails an append; the record is
		// already durable and consumers can re-read from the store.
		r.logger.WarnContext(ctx, "decision fan-out dropped, outbox full",
			"case_id", caseID, "record_id", record.RecordID)
	}

	return record, nil
}

// Query exposes filtered, timestamp-ordered access to the log.
func (r *Recorder) Query(ctx context.Context, filter Filter) ([]domain.DecisionRecord, error) {
	return r.store.Query(ctx, filter)
}

// Latest returns the most recent decision for a case, or nil when none exist.
func (r *Recorder) Latest(ctx context.Context, caseID string) (*domain.DecisionRecord, error) {
	records, err := r.store.Query(ctx, Filter{CaseID: caseID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[len(records)-1], nil
}

// Stats aggregates the log by risk level.
func (r *Recorder) Stats(ctx context.Context) (Stats, error) {
	records, err := r.store.Query(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:   len(records),
		ByRisk:  make(map[domain.RiskLevel]int),
		Percent: make(map[domain.RiskLevel]float64),
	}
	for _, rec := range records {
		stats.ByRisk[rec.Verdict.RiskLevel]++
	}
	if stats.Total > 0 {
		for level, count := range stats.ByRisk {
			stats.Percent[level] = float64(count) / float64(stats.Total) * 100
		}
	}
	return stats, nil
}

// Outbox exposes the fan-out channel for the worker.
func (r *Recorder) Outbox() <-chan domain.DecisionRecord {
	return r.outbox
}
