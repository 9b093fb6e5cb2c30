// File: internal/services/admin_services/admin_service.go
package admin_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// DashboardStats are the totals shown on the admin dashboard.
type DashboardStats struct {
	Users         int64
	Conversations int64
	Messages      int64
}

// ConversationTranscript is a conversation with its owner and messages.
type ConversationTranscript struct {
	Conversation *domain.Conversation
	Owner        *domain.User
	Messages     []domain.Message
}

// AdminService provides the read-only views of the admin panel.
type AdminService struct {
	userRepo         repository.UserRepository
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(
	userRepo repository.UserRepository,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
) *AdminService {
	return &AdminService{
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	var err error
	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.Conversations, err = s.conversationRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}
	if stats.Messages, err = s.messageRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	return &stats, nil
}

// GetAllUsers retrieves all users, newest first.
func (s *AdminService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// UserConversations returns the user and their conversations, most recently
// active first.
func (s *AdminService) UserConversations(ctx context.Context, userID uint) (*domain.User, []domain.Conversation, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user with ID %d: %w", userID, err)
	}
	conversations, err := s.conversationRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conversations of user %d: %w", userID, err)
	}
	return user, conversations, nil
}

// ConversationMessages returns a whole conversation in creation order.
func (s *AdminService) ConversationMessages(ctx context.Context, conversationID uint) (*ConversationTranscript, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation %d: %w", conversationID, err)
	}

	owner, err := s.userRepo.FindByID(ctx, conversation.UserID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find owner of conversation %d: %w", conversationID, err)
	}

	messages, err := s.messageRepo.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages of conversation %d: %w", conversationID, err)
	}
	return &ConversationTranscript{Conversation: conversation, Owner: owner, Messages: messages}, nil
}
