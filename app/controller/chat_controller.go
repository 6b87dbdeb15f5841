package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"apparel-designer/models"
	"apparel-designer/service"
)

// ChatController exposes the design helper conversation
type ChatController struct {
	sessions *service.SessionService
	chat     *service.ChatService
	logger   *zap.Logger
}

// NewChatController creates a new ChatController
func NewChatController(sessions *service.SessionService, chat *service.ChatService, logger *zap.Logger) *ChatController {
	return &ChatController{sessions: sessions, chat: chat, logger: logger}
}

// GetHistory handles GET /sessions/{id}/chat
func (c *ChatController) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := c.session(w, r, "GetChatHistory")
	if !ok {
		return
	}
	log, err := c.chat.History(r.Context(), id)
	if err != nil {
		writeError(w, c.logger, "GetChatHistory", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, log)
}

// SendMessage handles POST /sessions/{id}/chat
func (c *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := c.session(w, r, "SendChatMessage")
	if !ok {
		return
	}
	var req models.ChatSendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeBadRequest(w, c.logger, "SendChatMessage", "invalid request body: "+err.Error())
		return
	}
	log, err := c.chat.Send(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, c.logger, "SendChatMessage", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, log)
}

// ClearHistory handles DELETE /sessions/{id}/chat?confirm=true
func (c *ChatController) ClearHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := c.session(w, r, "ClearChat")
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := c.chat.Clear(r.Context(), id, confirmed); err != nil {
		writeError(w, c.logger, "ClearChat", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, models.ChatLogResponse{Messages: []models.ChatMessage{}})
}

func (c *ChatController) session(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := c.sessions.Get(r.Context(), id); err != nil {
		writeError(w, c.logger, op, err)
		return "", false
	}
	return id, true
}
