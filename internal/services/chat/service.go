package chat

import (
	"context"
	"errors"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
)

// ChatService serves the read and delete side of conversations. Every call
// is scoped to the requesting user; foreign conversations look missing.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	logger        Logger
}

func NewChatService(conversations repository.ConversationRepository, messages repository.MessageRepository, logger Logger) *ChatService {
	return &ChatService{conversations: conversations, messages: messages, logger: logger}
}

func (s *ChatService) ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	conversations, err := s.conversations.FindByUserID(ctx, userID)
	if err != nil {
		return nil, NewStorageError("list", "could not retrieve conversations", err)
	}
	return conversations, nil
}

func (s *ChatService) GetConversation(ctx context.Context, userID, conversationID uint) (*domain.Conversation, error) {
	conversation, err := s.conversations.FindByIDForUser(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, NewNotFoundError(userID, conversationID)
		}
		return nil, NewStorageError("get", "could not retrieve conversation", err)
	}
	return conversation, nil
}

func (s *ChatService) GetMessages(ctx context.Context, userID, conversationID uint) ([]domain.Message, error) {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.messages.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, NewStorageError("messages", "could not retrieve messages", err)
	}
	return messages, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID uint) error {
	if err := s.conversations.Delete(ctx, conversationID, userID); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return NewNotFoundError(userID, conversationID)
		}
		return NewStorageError("delete", "could not delete conversation", err)
	}
	s.logger.Info("conversation deleted", "user_id", userID, "conversation_id", conversationID)
	return nil
}
