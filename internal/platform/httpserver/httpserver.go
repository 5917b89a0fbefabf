package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the connection-level timeouts this service
// runs with. Per-request deadlines are owned by the middleware chain.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
