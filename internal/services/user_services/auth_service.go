// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-gemchat/internal/auth"
	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services"
)

const (
	googleUsernameFallback = "guser"
	googleUsernameAttempts = 100
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a local account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	if n := utf8.RuneCountInString(username); n < domain.UsernameMinLength || n > domain.UsernameMaxLength {
		return nil, "", ErrInvalidUsername
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		s.logger.Warn("registration failed - username already exists", "username", services.MaskUsername(username))
		return nil, "", ErrUsernameTaken
	}

	user := &domain.User{Username: username}
	if err := user.HashPassword(password); err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration.
		if taken, _ := s.userRepo.ExistsByUsername(ctx, username); taken {
			return nil, "", ErrUsernameTaken
		}
		s.logger.Error("user creation failed", "error", err, "username", services.MaskUsername(username))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(created)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered successfully", "username", services.MaskUsername(username), "user_id", created.ID)
	return created, token, nil
}

// Login authenticates a local account.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", ErrMissingCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "username", services.MaskUsername(username))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !user.ValidatePassword(password) {
		s.logger.Warn("login failed - invalid password", "username", services.MaskUsername(username), "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("login successful", "username", services.MaskUsername(username), "user_id", user.ID, "is_admin", user.IsAdmin)
	return user, token, nil
}

// IssueToken signs a token for user.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	token, err := s.tokens.GenerateJWT(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", user.ID)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ResolveToken validates token and loads its user. Errors are
// auth.ErrTokenExpired, auth.ErrTokenInvalid or repository.ErrUserNotFound.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// LoginWithGoogle finds the account for profile, linking it to an existing
// account with the same email or creating a new one.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*domain.User, string, error) {
	if profile.Email == "" {
		s.logger.Error("google profile without email", "google_id", profile.ID)
		return nil, "", ErrEmailRequired
	}

	user, err := s.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*domain.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user by google id: %w", err)
	}

	user, err = s.userRepo.FindByEmail(ctx, profile.Email)
	if err == nil {
		googleID := profile.ID
		user.GoogleID = &googleID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}
		s.logger.Info("linked google account to existing user", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	username, err := s.uniqueUsername(ctx, googleUsernameBase(profile))
	if err != nil {
		return nil, err
	}

	googleID, email := profile.ID, profile.Email
	created, err := s.userRepo.Create(ctx, &domain.User{
		Username: username,
		Email:    &email,
		GoogleID: &googleID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google user: %w", err)
	}
	s.logger.Info("created user from google account", "user_id", created.ID, "username", services.MaskUsername(username))
	return created, nil
}

func (s *AuthService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= googleUsernameAttempts; i++ {
		taken, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", ErrUsernameExhausted
}

// googleUsernameBase keeps the lowercase ASCII letters and digits of the
// display name, leaving room for a numeric suffix.
func googleUsernameBase(profile GoogleProfile) string {
	name := profile.DisplayName
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSpace(profile.GivenName + " " + profile.FamilyName)
	}
	if name == "" {
		name, _, _ = strings.Cut(profile.Email, "@")
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > domain.UsernameMaxLength-3 {
		base = base[:domain.UsernameMaxLength-3]
	}
	if len(base) < domain.UsernameMinLength {
		return googleUsernameFallback
	}
	return base
}
