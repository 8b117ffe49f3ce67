// File path: internal/api/workorder_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmcardoso/fieldops/internal/portal"
	"github.com/jmcardoso/fieldops/internal/workorder"
)

type lookupRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid lookup payload"))
		return
	}
	creds := portal.Credentials{Username: req.Username, Password: req.Password}
	result, err := s.orch.Lookup(r.Context(), req.ID, creds)
	if err != nil {
		writeError(w, lookupStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// lookupStatus maps the lookup error taxonomy onto HTTP statuses: validation
// failures are the caller's fault, an in-flight lookup is a conflict, and an
// upstream failure surfaces as a bad gateway with the portal message intact.
func lookupStatus(err error) int {
	var validation *workorder.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, workorder.ErrLookupInFlight) {
		return http.StatusConflict
	}
	var upstream *portal.UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records := s.orch.History()
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workorders": records})
}
