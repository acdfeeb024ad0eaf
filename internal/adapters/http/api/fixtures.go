package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/goalwatch/internal/domain/dedupe"
)

// FixtureStateReader exposes the deduplication cache.
type FixtureStateReader interface {
	FixtureState(ctx context.Context, fixtureID int64) (dedupe.Entry, bool)
}

// FixturesHandler serves cached analysis state per fixture.
type FixturesHandler struct {
	deps FixtureStateReader
}

// NewFixturesHandler creates a new fixtures handler.
func NewFixturesHandler(deps FixtureStateReader) *FixturesHandler {
	return &FixturesHandler{deps: deps}
}

type fixtureResponse struct {
	FixtureID int64        `json:"fixture_id"`
	Entry     dedupe.Entry `json:"last_reported"`
}

// HandleGet handles GET /fixtures/{fixture_id}.
func (h *FixturesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := fixtureID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entry, ok := h.deps.FixtureState(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: fixture %d has no cached analysis", ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, fixtureResponse{FixtureID: id, Entry: entry})
}
