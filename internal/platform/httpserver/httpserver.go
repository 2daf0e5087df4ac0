package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Handler-level deadlines are owned by the timeout
// middleware; these limits only guard slow or stalled clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
