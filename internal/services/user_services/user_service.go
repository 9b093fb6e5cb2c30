// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services"
)

// UserService covers account administration outside the login flow.
type UserService struct {
	userRepo repository.UserRepository
	logger   Logger
}

func NewUserService(userRepo repository.UserRepository, logger Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// SeedAdmin creates the initial administrator unless a user with the same
// username or email exists. It reports whether a user was created.
func (s *UserService) SeedAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	if seed.Username == "" || seed.Password == "" {
		return false, ErrMissingCredentials
	}
	if seed.Password == DefaultAdminPassword {
		s.logger.Warn("initial admin uses the default password, set INITIAL_ADMIN_PASSWORD")
	}

	if _, err := s.userRepo.FindByUsername(ctx, seed.Username); err == nil {
		s.logger.Info("admin seed skipped, username exists", "username", services.MaskUsername(seed.Username))
		return false, nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return false, fmt.Errorf("failed to check admin username: %w", err)
	}
	if seed.Email != "" {
		if _, err := s.userRepo.FindByEmail(ctx, seed.Email); err == nil {
			s.logger.Info("admin seed skipped, email exists")
			return false, nil
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return false, fmt.Errorf("failed to check admin email: %w", err)
		}
	}

	admin := &domain.User{Username: seed.Username, IsAdmin: true}
	if seed.Email != "" {
		email := seed.Email
		admin.Email = &email
	}
	if err := admin.HashPassword(seed.Password); err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	created, err := s.userRepo.Create(ctx, admin)
	if err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("seeded initial admin user", "user_id", created.ID, "username", services.MaskUsername(seed.Username))
	return true, nil
}

// DeleteUser removes the named user with all their conversations and messages.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", user.ID, err)
	}
	s.logger.Info("user deleted", "user_id", user.ID)
	return nil
}
