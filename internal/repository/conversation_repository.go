// File: internal/repository/conversation_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-gemchat/internal/domain"
	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if conversation.UserID == 0 {
		return nil, errors.New("conversation must have an owner")
	}
	if conversation.Title == "" {
		conversation.Title = domain.DefaultConversationTitle
	}
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, fmt.Errorf("database error creating conversation for user %d: %w", conversation.UserID, err)
	}
	return conversation, nil
}

func (r *gormConversationRepository) CreateWithMessage(ctx context.Context, conversation *domain.Conversation, message *domain.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &gormConversationRepository{db: tx}
		if _, err := txRepo.Create(ctx, conversation); err != nil {
			return err
		}
		message.ConversationID = conversation.ID
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("database error creating first message: %w", err)
		}
		return nil
	})
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.WithContext(ctx).First(&conversation, id).Error
	return handleConversationFindError(err, &conversation)
}

// FindByIDForUser treats a conversation owned by someone else as missing.
func (r *gormConversationRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&conversation).Error
	return handleConversationFindError(err, &conversation)
}

// FindByUserID returns the user's conversations, most recently updated first.
func (r *gormConversationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("database error fetching conversations for user %d: %w", userID, err)
	}
	return conversations, nil
}

func (r *gormConversationRepository) TouchUpdatedAt(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("database error updating timestamp for conversation %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Delete removes the conversation and its messages if userID owns it.
func (r *gormConversationRepository) Delete(ctx context.Context, id, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&domain.Conversation{}).Where("id = ? AND user_id = ?", id, userID).Count(&owned).Error; err != nil {
			return fmt.Errorf("database error checking conversation %d: %w", id, err)
		}
		if owned == 0 {
			return ErrConversationNotFound
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return fmt.Errorf("database error deleting messages of conversation %d: %w", id, err)
		}
		if err := tx.Delete(&domain.Conversation{}, id).Error; err != nil {
			return fmt.Errorf("database error deleting conversation %d: %w", id, err)
		}
		return nil
	})
}

func (r *gormConversationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).Count(&count).Error
	return count, err
}

func handleConversationFindError(err error, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("database error finding conversation: %w", err)
	}
	return conversation, nil
}
