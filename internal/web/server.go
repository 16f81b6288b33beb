// Package web serves the tracker's status page, its JSON form, a health
// check and, when configured, the Prometheus metrics.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/tracker-uplink/internal/status"
)

// Source provides the state every page is rendered from.
type Source interface {
	Snapshot() status.Snapshot
}

// Server is the status HTTP server.
type Server struct {
	httpServer *http.Server
	source     Source
}

// New creates a Server on addr. metrics, if non-nil, is served on /metrics.
func New(addr string, source Source, metrics http.Handler) *Server {
	s := &Server{source: source}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.readOnly(s.handleIndex))
	mux.HandleFunc("/index.json", s.readOnly(s.handleJSON))
	mux.HandleFunc("/healthz", s.readOnly(s.handleHealth))
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) readOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.source.Snapshot())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(status.FormatJSON(s.source.Snapshot()))
}

// handleHealth reports 200 once the device has joined and the broker
// connection is up, 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	switch {
	case !snap.MQTTConnected:
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "mqtt disconnected\n")
	case !snap.Stats.Joined:
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "not joined\n")
	default:
		io.WriteString(w, "ok\n")
	}
}
