package api

import "net/http"

// ControlHandler pauses and resumes scanning.
type ControlHandler struct {
	deps Controller
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps Controller) *ControlHandler {
	return &ControlHandler{deps: deps}
}

type controlResponse struct {
	Paused bool `json:"paused"`
}

// HandlePause handles POST /pause.
func (h *ControlHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.deps.Pause(r.Context())
	writeJSON(w, http.StatusOK, controlResponse{Paused: h.deps.Paused()})
}

// HandleResume handles POST /resume.
func (h *ControlHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.deps.Resume(r.Context())
	writeJSON(w, http.StatusOK, controlResponse{Paused: h.deps.Paused()})
}
