package audit

import (
	"context"
	"log/slog"

	"casetrail/internal/domain"
)

// Worker drains the recorder's outbox into a sink. Publish failures are
// logged and dropped rather than retried: the store already holds the record
// and consumers that need completeness read the store, not the stream.
type Worker struct {
	inbox  <-chan domain.DecisionRecord
	sink   Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan domain.DecisionRecord, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			if err := w.sink.Publish(ctx, record); err != nil {
				w.logger.ErrorContext(ctx, "decision fan-out publish failed",
					"case_id", record.CaseID,
					"record_id", record.RecordID,
					"error", err,
				)
			}
		}
	}
}

// NoopSink discards records. Used when no fan-out target is configured.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, domain.DecisionRecord) error { return nil }
