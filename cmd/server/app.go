package main

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-gemchat/internal/auth"
	"github.com/iyunix/go-gemchat/internal/config"
	"github.com/iyunix/go-gemchat/internal/database"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/ai"
	"github.com/iyunix/go-gemchat/internal/services/user_services"
)

// Application aggregates what every subcommand needs.
type Application struct {
	Config *config.Config
	Logger *services.ZapLogger
	DB     *gorm.DB

	Users         repository.UserRepository
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository

	AuthService *user_services.AuthService
	UserService *user_services.UserService
}

// newApplication loads config, builds the logger and opens and migrates the database.
func newApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := services.NewLogger("gemchat", cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	users := repository.NewGormUserRepository(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	return &Application{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		Users:         users,
		Conversations: repository.NewConversationRepository(db),
		Messages:      repository.NewMessageRepository(db),
		AuthService:   user_services.NewAuthService(users, tokens, logger.Named("auth")),
		UserService:   user_services.NewUserService(users, logger.Named("users")),
	}, nil
}

func (a *Application) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Logger.Sync()
}

func (a *Application) SeedAdmin(ctx context.Context) (bool, error) {
	return a.UserService.SeedAdmin(ctx, user_services.AdminSeed{
		Username: a.Config.InitialAdminUsername,
		Email:    a.Config.InitialAdminEmail,
		Password: a.Config.InitialAdminPassword,
	})
}

func aiConfig(cfg *config.Config) *ai.Config {
	c := ai.DefaultConfig()
	c.Provider = cfg.AIProvider
	c.Temperature = cfg.AITemperature
	c.TopP = cfg.AITopP
	c.MaxOutputTokens = cfg.AIMaxOutputTokens
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		c.APIKey = cfg.OpenAIAPIKey
		c.BaseURL = cfg.OpenAIBaseURL
		c.Model = cfg.OpenAIModelName
	default:
		c.APIKey = cfg.GeminiAPIKey
		c.Model = cfg.GeminiModelName
	}
	return c
}

// newProvider builds the completion provider. Outside production a missing
// key yields a provider that reports itself unavailable on every request.
func (a *Application) newProvider(ctx context.Context) (ai.CompletionProvider, error) {
	provider, err := ai.NewProvider(ctx, aiConfig(a.Config))
	if err == nil {
		if a.Config.AIRetryAttempts > 1 {
			retry := ai.DefaultRetryConfig()
			retry.MaxAttempts = a.Config.AIRetryAttempts
			return ai.WithRetry(provider, retry), nil
		}
		return provider, nil
	}
	if a.Config.IsProduction() {
		return nil, fmt.Errorf("init AI provider: %w", err)
	}
	a.Logger.Warn("AI provider unavailable, chat requests will fail", "provider", a.Config.AIProvider, "error", err)
	return &ai.UnavailableProvider{Reason: err.Error()}, nil
}

const shutdownTimeout = 15 * time.Second
