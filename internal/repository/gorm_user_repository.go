// File: internal/repository/gorm_user_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-gemchat/internal/domain"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts a new user record.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("database error creating user %q: %w", user.Username, err)
	}
	return user, nil
}

// Update saves changes to an existing user record.
func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("database error updating user %d: %w", user.ID, err)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user, "FindByID")
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user, "FindByUsername")
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return r.handleFindError(err, &user, "FindByEmail")
}

func (r *gormUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	return r.handleFindError(err, &user, "FindByGoogleID")
}

func (r *gormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error checking username: %w", err)
	}
	return count > 0, nil
}

// FindAll returns every user, newest first.
func (r *gormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("database error retrieving users: %w", err)
	}
	return users, nil
}

func (r *gormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}

func (r *gormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conversationIDs := tx.Model(&domain.Conversation{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", conversationIDs).Delete(&domain.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages of user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Conversation{}).Error; err != nil {
			return fmt.Errorf("delete conversations of user %d: %w", id, err)
		}
		result := tx.Delete(&domain.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User, methodName string) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("[UserRepository] %s: %w", methodName, err)
	}
	return user, nil
}
