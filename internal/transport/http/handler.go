// Package http exposes the classification pipeline and the audit log over a
// chi router.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"casetrail/internal/audit"
	"casetrail/internal/cases"
	"casetrail/internal/domain"
	"casetrail/internal/pipeline"
	"casetrail/pkg/platform/httputil"
	"casetrail/pkg/platform/sentinel"
	"casetrail/pkg/requestcontext"
)

// Pipeline runs the classification flow for a single case.
type Pipeline interface {
	Process(ctx context.Context, caseID string) (*pipeline.Outcome, error)
}

// DecisionLog is the read side of the audit trail.
type DecisionLog interface {
	Query(ctx context.Context, filter audit.Filter) ([]domain.DecisionRecord, error)
	Latest(ctx context.Context, caseID string) (*domain.DecisionRecord, error)
	Stats(ctx context.Context) (audit.Stats, error)
}

// Handler wires case and decision endpoints to their services.
type Handler struct {
	pipeline  Pipeline
	cases     cases.Source
	decisions DecisionLog
	logger    *slog.Logger
}

// New constructs a handler with its dependencies.
func New(p Pipeline, source cases.Source, decisions DecisionLog, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline:  p,
		cases:     source,
		decisions: decisions,
		logger:    logger,
	}
}

// HandleClassify handles POST /v1/cases/{caseID}/classify.
func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caseID := chi.URLParam(r, "caseID")
	start := time.Now()

	outcome, err := h.pipeline.Process(ctx, caseID)
	if err != nil {
		h.writeProcessError(ctx, w, caseID, requestID, outcome, err)
		return
	}

	h.logger.InfoContext(ctx, "case classified",
		"request_id", requestID,
		"case_id", caseID,
		"risk_level", outcome.Record.Verdict.RiskLevel,
		"sla_status", outcome.Record.SLAStatus,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromOutcome(outcome))
}

// writeProcessError maps pipeline errors to HTTP statuses. Unpersisted
// outcomes are the one success-ish case: the verdict is returned with 202 so
// the caller knows the classification happened but the trail is behind.
func (h *Handler) writeProcessError(ctx context.Context, w http.ResponseWriter, caseID, requestID string, outcome *pipeline.Outcome, err error) {
	h.logger.ErrorContext(ctx, "classification failed",
		"request_id", requestID,
		"case_id", caseID,
		"error", err,
	)

	var (
		cfgErr *pipeline.ConfigError
		fault  *pipeline.Fault
		unpErr *pipeline.UnpersistedError
	)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "not_found", "unknown case")
	case errors.As(err, &unpErr):
		httputil.WriteJSON(w, http.StatusAccepted, fromOutcome(outcome))
	case errors.As(err, &fault) && fault.Stage == pipeline.StageValidate:
		httputil.WriteError(w, http.StatusUnprocessableEntity, "verdict_rejected", "no strategy produced a valid verdict")
	case errors.As(err, &fault):
		httputil.WriteError(w, http.StatusBadGateway, "oracle_unavailable", "classification oracle failed")
	case errors.As(err, &cfgErr):
		httputil.WriteError(w, http.StatusInternalServerError, "config_error", "")
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// HandleListCases handles GET /v1/cases.
func (h *Handler) HandleListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := h.cases.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "case listing failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, casesResponse{Cases: all, Count: len(all)})
}

// HandleGetCase handles GET /v1/cases/{caseID}.
func (h *Handler) HandleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	c, err := h.cases.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "not_found", "unknown case")
			return
		}
		h.logger.ErrorContext(ctx, "case lookup failed", "case_id", caseID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// HandleLatestDecision handles GET /v1/cases/{caseID}/decisions/latest.
func (h *Handler) HandleLatestDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	rec, err := h.decisions.Latest(ctx, caseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "latest decision lookup failed", "case_id", caseID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if rec == nil {
		httputil.WriteError(w, http.StatusNotFound, "not_found", "no decisions recorded for case")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(*rec))
}

// HandleQueryDecisions handles GET /v1/decisions.
func (h *Handler) HandleQueryDecisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	records, err := h.decisions.Query(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision query failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := decisionsResponse{Decisions: make([]decisionResponse, 0, len(records)), Count: len(records)}
	for _, rec := range records {
		resp.Decisions = append(resp.Decisions, fromRecord(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleDecisionStats handles GET /v1/decisions/stats.
func (h *Handler) HandleDecisionStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.decisions.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision stats failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStats(stats))
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
