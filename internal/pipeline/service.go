// Package pipeline composes the classification flow end to end: case →
// semantic context → oracle → validation → audit record, with SLA status
// computed independently from the same case.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"casetrail/internal/cases"
	"casetrail/internal/domain"
	"casetrail/internal/oracle"
	"casetrail/internal/pipeline/metrics"
	"casetrail/internal/semantic"
	"casetrail/internal/sla"
	"casetrail/internal/validate"
	"casetrail/pkg/platform/sentinel"
)

// Recorder is the slice of the audit package the pipeline needs.
type Recorder interface {
	Append(ctx context.Context, caseID string, verdict domain.Verdict, status domain.SLAStatus) (domain.DecisionRecord, error)
}

// VerdictCache memoizes validated remote verdicts between invocations.
type VerdictCache interface {
	Find(ctx context.Context, sc semantic.Context) (*domain.Verdict, error)
	Save(ctx context.Context, sc semantic.Context, v domain.Verdict) error
}

// Outcome is the result of one pipeline invocation. Persisted is false only
// when the verdict was computed but the audit append failed.
type Outcome struct {
	Record    domain.DecisionRecord
	Persisted bool
}

// Service orchestrates one case per invocation. The strategy pair is fixed at
// construction: primary is either the remote oracle or the fallback itself
// (fallback-only mode), fallback is always the deterministic strategy.
type Service struct {
	source    cases.Source
	evaluator *sla.Evaluator
	primary   oracle.Classifier
	fallback  oracle.Classifier
	validator *validate.Validator
	recorder  Recorder
	cache     VerdictCache
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables verdict caching for remote classifications.
func WithCache(c VerdictCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	source cases.Source,
	evaluator *sla.Evaluator,
	primary oracle.Classifier,
	fallback oracle.Classifier,
	validator *validate.Validator,
	recorder Recorder,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("case source is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("sla evaluator is required")
	}
	if primary == nil || fallback == nil {
		return nil, fmt.Errorf("both classification strategies are required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}

	s := &Service{
		source:    source,
		evaluator: evaluator,
		primary:   primary,
		fallback:  fallback,
		validator: validator,
		recorder:  recorder,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Process runs the full pipeline for one case. At most one remote call and at
// most one extra fallback classification happen per invocation; there is no
// retry loop anywhere below this method.
func (s *Service) Process(ctx context.Context, caseID string) (*Outcome, error) {
	start := time.Now()

	c, err := s.source.Get(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("fetch case %s: %w", caseID, err)
	}
	if err := c.Validate(); err != nil {
		return nil, &ConfigError{CaseID: caseID, Err: err}
	}

	// SLA status is derived from the raw case, independent of classification.
	status, err := s.evaluator.Evaluate(c.DaysOverdue, c.SLATargetDays)
	if err != nil {
		return nil, &ConfigError{CaseID: caseID, Err: err}
	}

	sc := semantic.Build(c)

	verdict, err := s.classify(ctx, sc)
	if err != nil {
		return nil, err
	}

	record, err := s.recorder.Append(ctx, caseID, verdict, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"case_id", caseID, "stage", StageRecord, "error", err)
		outcome := &Outcome{
			Record: domain.DecisionRecord{CaseID: caseID, Verdict: verdict, SLAStatus: status},
		}
		return outcome, &UnpersistedError{CaseID: caseID, Err: err}
	}

	if s.metrics != nil {
		s.metrics.ObserveClassification(string(verdict.RiskLevel), string(verdict.Source))
		s.metrics.ObserveAuditAppend()
		s.metrics.ObserveDuration(time.Since(start))
	}
	s.logger.InfoContext(ctx, "case classified",
		"case_id", caseID,
		"risk_level", verdict.RiskLevel,
		"source", verdict.Source,
		"sla_status", status,
		"record_id", record.RecordID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Outcome{Record: record, Persisted: true}, nil
}

// classify obtains a validated verdict: cache, then primary strategy, then at
// most one fallback attempt.
func (s *Service) classify(ctx context.Context, sc semantic.Context) (domain.Verdict, error) {
	if s.cache != nil {
		cached, err := s.cache.Find(ctx, sc)
		switch {
		case err == nil:
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			s.logger.DebugContext(ctx, "verdict served from cache", "case_id", sc.CaseID)
			return *cached, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			// An unreachable cache is a degradation, not a miss; keep it
			// visible but never let it block classification.
			s.logger.WarnContext(ctx, "verdict cache lookup failed", "case_id", sc.CaseID, "error", err)
		}
	}

	usedFallback := s.primary == s.fallback

	raw, err := s.primary.Classify(ctx, sc)
	if err != nil {
		var te *oracle.TransportError
		if !errors.As(err, &te) || usedFallback {
			return domain.Verdict{}, &Fault{CaseID: sc.CaseID, Stage: StageOracle, Err: err}
		}
		// Transport failures are recovered locally: log and fall back.
		if s.metrics != nil {
			s.metrics.ObserveOracleFailure("transport")
		}
		s.logger.WarnContext(ctx, "oracle transport failure, using fallback",
			"case_id", sc.CaseID, "error", err)
		usedFallback = true
		if raw, err = s.fallback.Classify(ctx, sc); err != nil {
			return domain.Verdict{}, &Fault{CaseID: sc.CaseID, Stage: StageOracle, Err: err}
		}
	}

	verdict, verr := s.validator.Validate(raw)
	if verr != nil {
		if s.metrics != nil {
			s.metrics.ObserveOracleFailure("validation")
		}
		if usedFallback {
			return domain.Verdict{}, &Fault{CaseID: sc.CaseID, Stage: StageValidate, LastRaw: raw.Payload, Err: verr}
		}
		s.logger.WarnContext(ctx, "oracle verdict rejected, retrying with fallback",
			"case_id", sc.CaseID, "error", verr)

		raw, err = s.fallback.Classify(ctx, sc)
		if err != nil {
			return domain.Verdict{}, &Fault{CaseID: sc.CaseID, Stage: StageOracle, Err: err}
		}
		if verdict, verr = s.validator.Validate(raw); verr != nil {
			return domain.Verdict{}, &Fault{CaseID: sc.CaseID, Stage: StageValidate, LastRaw: raw.Payload, Err: verr}
		}
	}

	if s.cache != nil && verdict.Source == domain.SourceOracle {
		if err := s.cache.Save(ctx, sc, verdict); err != nil {
			// Cache trouble never fails a classification.
			s.logger.WarnContext(ctx, "verdict cache save failed", "case_id", sc.CaseID, "error", err)
		}
	}
	return verdict, nil
}
