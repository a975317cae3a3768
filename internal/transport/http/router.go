package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casetrail/pkg/platform/middleware/auth"
	"casetrail/pkg/platform/middleware/metadata"
)

// NewRouter mounts all endpoints. Decision queries expose the audit trail and
// are JWT-guarded; case endpoints and classification are open so dialer
// integrations can run without token plumbing.
func NewRouter(h *Handler, validator *auth.Validator) http.Handler {
	r := chi.NewRouter()
	r.Use(metadata.RequestMetadata)

	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/cases", h.HandleListCases)
		r.Get("/cases/{caseID}", h.HandleGetCase)
		r.Post("/cases/{caseID}/classify", h.HandleClassify)
		r.Get("/cases/{caseID}/decisions/latest", h.HandleLatestDecision)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(validator, h.logger))
			r.Get("/decisions", h.HandleQueryDecisions)
			r.Get("/decisions/stats", h.HandleDecisionStats)
		})
	})

	return r
}
