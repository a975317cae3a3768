package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults sized for the pipeline: the write
// timeout has to outlive the oracle call budget or classify requests get cut
// off mid-flight.
func New(addr string, handler http.Handler, oracleTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      oracleTimeout + 10*time.Second,
	}
}
