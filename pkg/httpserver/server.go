// Package httpserver assembles the daemon's HTTP surface: the /status
// snapshot, a /healthz liveness probe, /metrics, and static assets served
// with a locked-down Content-Security-Policy.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/metrics"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/status"
)

const requestTimeout = 10 * time.Second

// New builds the router serving /status, /healthz, /metrics (when m is
// non-nil), and static assets at /.
func New(store *status.Store, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(securityHeaders)

	r.Get("/status", status.Handler(store))
	r.Get("/healthz", healthz)

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Handle("/*", http.FileServer(http.FS(staticContent())))

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
