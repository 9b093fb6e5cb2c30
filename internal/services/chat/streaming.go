// File: internal/services/chat/streaming.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services/ai"
)

// StreamRequest is one user prompt, optionally continuing a conversation.
type StreamRequest struct {
	UserID         uint
	Prompt         string
	ConversationID *uint
}

// PreparedTurn is a persisted prompt whose reply has not been generated yet.
type PreparedTurn struct {
	Conversation *domain.Conversation
	Created      bool
	History      []ai.Turn
	Prompt       string
}

// StreamingService relays a provider's streamed reply to the caller and
// persists it.
type StreamingService struct {
	config        *Config
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	provider      ai.CompletionProvider
	logger        Logger
}

func NewStreamingService(
	config *Config,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	provider ai.CompletionProvider,
	logger Logger,
) (*StreamingService, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chat config: %w", err)
	}
	if provider == nil {
		return nil, errors.New("completion provider is required")
	}
	return &StreamingService{
		config:        config,
		conversations: conversations,
		messages:      messages,
		provider:      provider,
		logger:        logger,
	}, nil
}

// Prepare validates the prompt, resolves or creates the conversation, stores
// the prompt and loads the history. Nothing has been sent to the client yet,
// so every error here can still become a plain HTTP error.
func (s *StreamingService) Prepare(ctx context.Context, req StreamRequest) (*PreparedTurn, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewValidationError("prepare", "Prompt is required.")
	}

	var (
		conversation *domain.Conversation
		created      bool
	)
	if req.ConversationID == nil {
		conversation = &domain.Conversation{UserID: req.UserID, Title: DeriveTitle(req.Prompt)}
		first := &domain.Message{Role: domain.RoleUser, Content: req.Prompt}
		if err := s.conversations.CreateWithMessage(ctx, conversation, first); err != nil {
			return nil, NewStorageError("prepare", "failed to create conversation", err)
		}
		created = true
		s.logger.Info("conversation created", "user_id", req.UserID, "conversation_id", conversation.ID)
	} else {
		found, err := s.conversations.FindByIDForUser(ctx, *req.ConversationID, req.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				return nil, NewNotFoundError(req.UserID, *req.ConversationID)
			}
			return nil, NewStorageError("prepare", "failed to load conversation", err)
		}
		conversation = found

		msg := &domain.Message{ConversationID: conversation.ID, Role: domain.RoleUser, Content: req.Prompt}
		if _, err := s.messages.Create(ctx, msg); err != nil {
			return nil, NewStorageError("prepare", "failed to save prompt", err)
		}
		if err := s.conversations.TouchUpdatedAt(ctx, conversation.ID); err != nil {
			s.logger.Warn("failed to touch conversation", "conversation_id", conversation.ID, "error", err)
		}
	}

	history, err := s.messages.FindByConversationID(ctx, conversation.ID)
	if err != nil {
		return nil, NewStorageError("prepare", "failed to load history", err)
	}
	if len(history) == 0 {
		return nil, NewStorageError("prepare", "history is empty after saving the prompt", nil)
	}

	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Role: string(m.Role), Text: m.Content})
	}
	last := turns[len(turns)-1]

	return &PreparedTurn{
		Conversation: conversation,
		Created:      created,
		History:      turns[:len(turns)-1],
		Prompt:       last.Text,
	}, nil
}

// Relay streams the reply for turn to events. Unless the client goes away it
// always ends with exactly one DoneEvent or ErrorEvent.
func (s *StreamingService) Relay(ctx context.Context, turn *PreparedTurn, events EventWriter) error {
	conversationID := turn.Conversation.ID
	start := time.Now()

	if hb, ok := events.(heartbeatWriter); ok && s.config.HeartbeatInterval > 0 {
		stop := startHeartbeat(hb, s.config.HeartbeatInterval)
		defer stop()
	}

	if turn.Created {
		if err := events.Send(conversationCreated(conversationID, turn.Conversation.Title)); err != nil {
			return s.clientGone(conversationID, err)
		}
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.config.StreamTimeout)
	defer cancel()

	var (
		reply   strings.Builder
		sendErr error
	)
	reason, err := s.provider.StreamChat(streamCtx, turn.History, turn.Prompt, func(delta string) error {
		reply.WriteString(delta)
		if err := events.Send(TextChunkEvent{TextChunk: delta}); err != nil {
			sendErr = err
			return err
		}
		return nil
	})

	switch {
	case sendErr != nil:
		return s.clientGone(conversationID, sendErr)
	case err != nil && ctx.Err() != nil:
		// The request context ended, which cancelled the upstream call too.
		return s.clientGone(conversationID, ctx.Err())
	case err != nil:
		msg := "AI provider error."
		if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
			msg = "The AI provider did not respond in time."
		}
		var aiErr *ai.AIError
		if errors.As(err, &aiErr) && aiErr.Type == ai.ErrTypeUnavailable {
			msg = "The AI provider is not configured."
		}
		s.logger.Error("stream completion failed", "conversation_id", conversationID, "provider", s.provider.Name(), "error", err)
		return s.fail(events, "relay", msg, err)
	}

	text := strings.TrimSpace(reply.String())
	if text == "" && !reason.IsNormal() {
		s.logger.Warn("generation stopped before any text", "conversation_id", conversationID, "finish_reason", reason)
		return s.fail(events, "relay", stoppedMessage(reason), nil)
	}

	var messageID *uint
	if text != "" {
		saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), s.config.SaveTimeout)
		defer cancelSave()

		saved, err := s.messages.Create(saveCtx, &domain.Message{
			ConversationID: conversationID,
			Role:           domain.RoleModel,
			Content:        text,
		})
		if err != nil {
			s.logger.Error("failed to save model message", "conversation_id", conversationID, "error", err)
			return s.fail(events, "persist", "Failed to save the AI response.", err)
		}
		if err := s.conversations.TouchUpdatedAt(saveCtx, conversationID); err != nil {
			s.logger.Warn("failed to touch conversation", "conversation_id", conversationID, "error", err)
		}
		messageID = &saved.ID
	}

	if err := events.Send(done(messageID, conversationID)); err != nil {
		return s.clientGone(conversationID, err)
	}

	s.logger.Info("stream chat completed",
		"conversation_id", conversationID,
		"finish_reason", reason,
		"response_length", len(text),
		"duration", time.Since(start))
	return nil
}

func (s *StreamingService) fail(events EventWriter, operation, message string, cause error) error {
	details := ""
	if cause != nil && s.config.ExposeErrorDetails {
		details = cause.Error()
	}
	if err := events.Send(errorEvent(message, details)); err != nil {
		s.logger.Warn("could not deliver error event", "error", err)
	}
	return NewStreamingError(operation, message, cause)
}

func (s *StreamingService) clientGone(conversationID uint, cause error) error {
	s.logger.Info("client disconnected during stream", "conversation_id", conversationID, "reason", cause)
	return NewStreamingError("relay", "client disconnected", cause)
}

func stoppedMessage(reason ai.FinishReason) string {
	if reason == ai.FinishSafety {
		return "The response was blocked due to safety settings."
	}
	return fmt.Sprintf("Response generation stopped due to: %s", reason)
}

// startHeartbeat writes keep-alive comments until the returned stop function
// is called. stop waits for the goroutine, so nothing is written afterwards.
func startHeartbeat(w heartbeatWriter, interval time.Duration) func() {
	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.Comment("keep-alive"); err != nil {
					return
				}
			case <-quit:
				return
			}
		}
	}()
	return func() {
		close(quit)
		wg.Wait()
	}
}
