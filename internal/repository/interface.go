// File: internal/repository/interface.go
package repository

import (
	"context"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes the user together with their conversations and messages.
	Delete(ctx context.Context, id uint) error
}

// ConversationRepository handles conversation data operations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	// CreateWithMessage stores a new conversation and its first message atomically.
	CreateWithMessage(ctx context.Context, conversation *domain.Conversation, message *domain.Message) error
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	FindByIDForUser(ctx context.Context, id, userID uint) (*domain.Conversation, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error)
	TouchUpdatedAt(ctx context.Context, id uint) error
	Delete(ctx context.Context, id, userID uint) error
	Count(ctx context.Context) (int64, error)
}

// MessageRepository handles message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error)
	Count(ctx context.Context) (int64, error)
}
