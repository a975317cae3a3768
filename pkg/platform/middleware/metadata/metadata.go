package metadata

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"casetrail/pkg/requestcontext"
)

// RequestMetadata stamps each request with a correlation ID and a request
// time. The ID is taken from X-Request-ID when a gateway already set one.
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
