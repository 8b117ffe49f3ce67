// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/jmcardoso/fieldops/internal/common"
	"github.com/jmcardoso/fieldops/internal/session"
	"github.com/jmcardoso/fieldops/internal/workorder"
)

// Server is the HTTP surface the dashboard talks to.
type Server struct {
	router chi.Router
	orch   *workorder.Orchestrator
	guard  *session.Guard
}

// NewServer wires the router to the lookup orchestrator and the session
// guard.
func NewServer(orch *workorder.Orchestrator, guard *session.Guard) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	if guard == nil {
		return nil, fmt.Errorf("session guard required")
	}
	srv := &Server{
		router: chi.NewRouter(),
		orch:   orch,
		guard:  guard,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/workorders/lookup", s.handleLookup)
	s.router.Get("/v1/workorders/history", s.handleHistory)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Post("/v1/session/activity", s.handleSessionActivity)
	s.router.Get("/v1/session", s.handleSessionStatus)
	s.router.Get("/debug/vars", expvar.Handler().ServeHTTP)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
