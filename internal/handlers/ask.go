package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"jucity-ai/internal/contextutil"
	"jucity-ai/internal/service"
)

// AskHandler handles question-answering requests.
type AskHandler struct {
	svc *service.AnswerService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(svc *service.AnswerService) *AskHandler {
	return &AskHandler{svc: svc}
}

// AskRequest is the HTTP payload for a question. UserID is optional; without
// it the answer is stateless.
type AskRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id,omitempty"`
}

// AskResponse is the HTTP payload for an answer.
type AskResponse struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	Intent      string   `json:"intent"`
	BookingHint string   `json:"booking_hint,omitempty"`
}

func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.svc.Answer(ctx, service.AnswerRequest{
		UserID:   req.UserID,
		Question: req.Question,
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		logger.ErrorContext(ctx, "answer pipeline error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:      resp.Answer,
		Sources:     resp.Sources,
		Intent:      resp.Intent,
		BookingHint: resp.BookingHint,
	})
}
