package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"casetrail/pkg/requestcontext"
)

func TestRequestMetadata(t *testing.T) {
	t.Run("generates request id when absent", func(t *testing.T) {
		var gotID string
		var gotTime time.Time
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = requestcontext.RequestID(r.Context())
			gotTime = requestcontext.Now(r.Context())
		})

		rec := httptest.NewRecorder()
		RequestMetadata(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, gotID)
		assert.Equal(t, gotID, rec.Header().Get("X-Request-ID"))
		assert.WithinDuration(t, time.Now(), gotTime, time.Second)
	})

	t.Run("preserves caller request id", func(t *testing.T) {
		var gotID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = requestcontext.RequestID(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		RequestMetadata(next).ServeHTTP(rec, req)

		assert.Equal(t, "req-42", gotID)
		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})
}
