// File: internal/repository/message_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/iyunix/go-gemchat/internal/domain"
	"gorm.io/gorm"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := message.Validate(); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("database error creating message in conversation %d: %w", message.ConversationID, err)
	}
	return message, nil
}

// FindByConversationID returns messages in creation order. id breaks ties
// between rows written within the same clock tick.
func (r *gormMessageRepository) FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("database error fetching messages for conversation %d: %w", conversationID, err)
	}
	return messages, nil
}

func (r *gormMessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Count(&count).Error
	return count, err
}
