package handlers

import (
	"net/http"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/indexer"
)

// ReindexHandler triggers an out-of-band rebuild of the vector collection.
type ReindexHandler struct {
	pipeline *indexer.Pipeline
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(pipeline *indexer.Pipeline) *ReindexHandler {
	return &ReindexHandler{pipeline: pipeline}
}

func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	report, err := h.pipeline.Reindex(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "reindex failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Reindex failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
