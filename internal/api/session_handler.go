// File path: internal/api/session_handler.go
package api

import (
	"net/http"
	"time"

	"github.com/jmcardoso/fieldops/internal/common"
)

type sessionStatus struct {
	State        string    `json:"state"`
	LastActivity time.Time `json:"last_activity"`
}

func (s *Server) handleSessionActivity(w http.ResponseWriter, r *http.Request) {
	s.guard.Activity()
	writeJSON(w, http.StatusOK, sessionStatus{
		State:        string(s.guard.State()),
		LastActivity: s.guard.LastActivity(),
	})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionStatus{
		State:        string(s.guard.State()),
		LastActivity: s.guard.LastActivity(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}
