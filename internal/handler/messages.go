package handler

import (
	"net/http"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/service"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

// ChatRequest is the body of POST /chat. A session_id of 0 starts a new session.
type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID *int64 `json:"session_id" validate:"omitempty,gte=0"`
}

// ChatResponse is the body returned for a completed turn.
type ChatResponse struct {
	Success   bool       `json:"success"`
	SessionID int64      `json:"session_id"`
	MessageID int64      `json:"message_id"`
	Data      ChatAnswer `json:"data"`
}

// ChatAnswer is the answer part of ChatResponse.
type ChatAnswer struct {
	Response         string `json:"response"`
	Sources          []any  `json:"sources"`
	RelatedQuestions []any  `json:"related_questions"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	MessageID       int64  `json:"message_id" validate:"required,gt=0"`
	IsHelpful       *bool  `json:"is_helpful" validate:"required"`
	FeedbackComment string `json:"feedback_comment" validate:"max=2000"`
}

// MessageHandler handles the chat turn and feedback endpoints.
type MessageHandler struct {
	turns    *service.TurnService
	feedback *service.FeedbackService
	logger   *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(turns *service.TurnService, feedback *service.FeedbackService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		turns:    turns,
		feedback: feedback,
		logger:   log,
	}
}

// Chat handles POST /api/v1/chatbot/chat
func (h *MessageHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID != nil && *req.SessionID == 0 {
		req.SessionID = nil
	}

	result, err := h.turns.Submit(r.Context(), model.TurnRequest{
		UserID:    userID,
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Success:   true,
		SessionID: result.SessionID,
		MessageID: result.MessageID,
		Data: ChatAnswer{
			Response:         result.Answer,
			Sources:          result.Sources,
			RelatedQuestions: result.RelatedQuestions,
		},
	})
}

// Feedback handles POST /api/v1/chatbot/feedback
func (h *MessageHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.feedback.Record(r.Context(), req.MessageID, userID, *req.IsHelpful, req.FeedbackComment); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "feedback recorded"})
}
