package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/internal/domain/model"
)

const maxSnapshotBytes = 1 << 20

// Evaluator runs the pure engine over a snapshot.
type Evaluator interface {
	Evaluate(snap model.Snapshot) engine.Verdict
}

// AnalyzeHandler evaluates caller supplied snapshots without touching the
// provider or the caches.
type AnalyzeHandler struct {
	deps     Evaluator
	validate *validator.Validate
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Evaluator) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, validate: validator.New()}
}

type analyzeResponse struct {
	Qualified bool                  `json:"qualified"`
	Reason    engine.Reason         `json:"reason"`
	Score     int                   `json:"score"`
	Threshold model.Threshold       `json:"threshold"`
	Stability model.StabilityResult `json:"stability"`
	Result    *model.AnalysisResult `json:"result,omitempty"`
}

// HandleAnalyze handles POST /analyze.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	var snap model.Snapshot
	if err := sonic.Unmarshal(body, &snap); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(snap); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	v := h.deps.Evaluate(snap)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Qualified: v.Qualified(),
		Reason:    v.Reason,
		Score:     v.Score,
		Threshold: v.Threshold,
		Stability: v.Stability,
		Result:    v.Result,
	})
}
