// File: internal/handlers/chat_handler.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/middleware"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/chat"
	"github.com/iyunix/go-gemchat/internal/sse"
)

type ChatHandler struct {
	conversations chat.ConversationProvider
	streaming     chat.StreamProvider
	markdown      *markdownRenderer
	logger        services.Logger
}

func NewChatHandler(conversations chat.ConversationProvider, streaming chat.StreamProvider, logger services.Logger) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		streaming:     streaming,
		markdown:      newMarkdownRenderer(),
		logger:        logger,
	}
}

// writeChatError maps service errors onto HTTP statuses.
func writeChatError(w http.ResponseWriter, err error, fallback string) {
	var chatErr *chat.ChatError
	if errors.As(err, &chatErr) {
		switch chatErr.Type {
		case chat.ErrTypeValidation:
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		case chat.ErrTypeNotFound:
			writeError(w, chatErr.Message, http.StatusNotFound)
			return
		}
	}
	writeError(w, fallback, http.StatusInternalServerError)
}

// GetConversations handles GET /api/chat/conversations.
func (h *ChatHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	conversations, err := h.conversations.ListConversations(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("[ChatHandler] list conversations failed", "user_id", user.ID, "error", err)
		writeChatError(w, err, "Could not retrieve conversations.")
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// GetConversation handles GET /api/chat/conversations/{id}.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid conversation ID.", http.StatusBadRequest)
		return
	}

	conversation, err := h.conversations.GetConversation(r.Context(), user.ID, id)
	if err != nil {
		writeChatError(w, err, "Could not retrieve conversation.")
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

// GetMessages handles GET /api/chat/conversations/{id}/messages.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid conversation ID.", http.StatusBadRequest)
		return
	}

	messages, err := h.conversations.GetMessages(r.Context(), user.ID, id)
	if err != nil {
		writeChatError(w, err, "Could not retrieve messages.")
		return
	}
	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView{Message: m, HTML: string(h.markdown.Render(m.Content))})
	}
	writeJSON(w, http.StatusOK, views)
}

// messageView is a stored message plus its rendered Markdown.
type messageView struct {
	domain.Message
	HTML string `json:"html"`
}

// DeleteConversation handles DELETE /api/chat/conversations/{id}.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid conversation ID.", http.StatusBadRequest)
		return
	}

	if err := h.conversations.DeleteConversation(r.Context(), user.ID, id); err != nil {
		writeChatError(w, err, "Could not delete conversation.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// streamRequest is the body of POST /api/chat/stream.
type streamRequest struct {
	Prompt         string     `json:"prompt"`
	ConversationID optionalID `json:"conversationId"`
}

// optionalID accepts a number, a numeric string or null.
type optionalID struct {
	Value *uint
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		o.Value = nil
		return nil
	}
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil || n == 0 {
		return errors.New("conversationId must be a positive integer")
	}
	id := uint(n)
	o.Value = &id
	return nil
}

// StreamChat handles POST /api/chat/stream. Validation and conversation
// lookup happen before the event stream opens, so they still produce plain
// JSON errors; after that every outcome is an SSE event.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	turn, err := h.streaming.Prepare(r.Context(), chat.StreamRequest{
		UserID:         user.ID,
		Prompt:         req.Prompt,
		ConversationID: req.ConversationID.Value,
	})
	if err != nil {
		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) && (chatErr.Type == chat.ErrTypeValidation || chatErr.Type == chat.ErrTypeNotFound) {
			writeChatError(w, err, "")
			return
		}
		h.logger.Error("[ChatHandler] stream preparation failed", "user_id", user.ID, "error", err)
		detail := "internal error"
		if chatErr != nil {
			detail = chatErr.Message
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to process chat stream",
			"error":   detail,
		})
		return
	}

	stream, err := sse.NewWriter(w)
	if err != nil {
		h.logger.Error("[ChatHandler] response does not support streaming", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to process chat stream",
			"error":   "streaming unsupported",
		})
		return
	}
	if err := stream.Open(); err != nil {
		h.logger.Warn("[ChatHandler] could not open event stream", "error", err)
		return
	}

	if err := h.streaming.Relay(r.Context(), turn, stream); err != nil {
		h.logger.Debug("[ChatHandler] stream ended with error", "conversation_id", turn.Conversation.ID, "error", err)
	}
}
