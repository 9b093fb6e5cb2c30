package chat

import (
	"context"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// StreamProvider runs the two phases of a streamed chat turn.
type StreamProvider interface {
	Prepare(ctx context.Context, req StreamRequest) (*PreparedTurn, error)
	Relay(ctx context.Context, turn *PreparedTurn, events EventWriter) error
}

// ConversationProvider handles the non-streaming conversation operations.
type ConversationProvider interface {
	ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error)
	GetConversation(ctx context.Context, userID, conversationID uint) (*domain.Conversation, error)
	GetMessages(ctx context.Context, userID, conversationID uint) ([]domain.Message, error)
	DeleteConversation(ctx context.Context, userID, conversationID uint) error
}

var (
	_ StreamProvider       = (*StreamingService)(nil)
	_ ConversationProvider = (*ChatService)(nil)
)
