package api

import (
	"fmt"
	"net/http"
	"strconv"

	crerr "github.com/cockroachdb/errors"

	"github.com/okian/goalwatch/internal/adapters/repository"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

// AlertsHandler serves the alert history.
type AlertsHandler struct {
	deps AlertReader
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertReader) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// HandleList handles GET /alerts?limit=N.
func (h *AlertsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAlertLimit {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be between 1 and %d", ErrBadRequest, maxAlertLimit))
			return
		}
		limit = n
	}
	alerts, err := h.deps.Alerts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// HandleGet handles GET /alerts/{fixture_id}.
func (h *AlertsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := fixtureID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	alert, err := h.deps.Alert(r.Context(), id)
	if err != nil {
		writeAlertError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// HandleComplete handles POST /alerts/{fixture_id}/complete.
func (h *AlertsHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := fixtureID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.CompleteAlert(r.Context(), id); err != nil {
		writeAlertError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeAlertError(w http.ResponseWriter, err error) {
	if crerr.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
