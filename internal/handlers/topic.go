package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/service"
)

// TopicHandler answers menu-topic shortcuts via their canned questions.
type TopicHandler struct {
	svc *service.AnswerService
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(svc *service.AnswerService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// TopicRequest is the optional HTTP payload for a topic shortcut.
type TopicRequest struct {
	UserID string `json:"user_id,omitempty"`
}

func (h *TopicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	topic := chi.URLParam(r, "topic")

	var req TopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.svc.AnswerTopic(ctx, req.UserID, topic)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTopic) {
			writeError(w, http.StatusNotFound, "Unknown topic: "+topic)
			return
		}
		logger.ErrorContext(ctx, "topic pipeline error", "topic", topic, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer topic")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:      resp.Answer,
		Sources:     resp.Sources,
		Intent:      resp.Intent,
		BookingHint: resp.BookingHint,
	})
}
