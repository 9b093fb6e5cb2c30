package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-gemchat/internal/config"
	"github.com/iyunix/go-gemchat/internal/handlers"
	"github.com/iyunix/go-gemchat/internal/ratelimit"
	"github.com/iyunix/go-gemchat/internal/server"
	"github.com/iyunix/go-gemchat/internal/services/admin_services"
	"github.com/iyunix/go-gemchat/internal/services/chat"
	"github.com/iyunix/go-gemchat/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication()
			if err != nil {
				return err
			}
			defer app.Close()
			return serve(ctx, app)
		},
	}
}

// googleOAuthConfig points a failed Google sign-in back at the login page
// with the login_error flag the page script looks for.
func googleOAuthConfig(cfg *config.Config) handlers.GoogleOAuthConfig {
	return handlers.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		CallbackURL:  cfg.GoogleCallbackURL,
		SuccessURL:   cfg.FrontendURL + cfg.FrontendAppPath,
		FailureURL:   cfg.FrontendURL + "/?login_error=google_auth_failed&auth_provider=google",
	}
}

func newLimiter(ctx context.Context, app *Application) (ratelimit.Limiter, error) {
	cfg := ratelimit.DefaultAuthConfig()
	cfg.MaxAttempts = app.Config.RateLimitMaxAttempts
	cfg.WindowSize = app.Config.RateLimitWindow
	cfg.BanDuration = app.Config.RateLimitBan

	if app.Config.RedisURL == "" {
		return ratelimit.NewMemoryRateLimiter(cfg), nil
	}
	limiter, err := ratelimit.NewRedisRateLimiter(ctx, app.Config.RedisURL, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect rate limit store: %w", err)
	}
	app.Logger.Info("rate limiting backed by redis")
	return limiter, nil
}

func serve(ctx context.Context, app *Application) error {
	cfg := app.Config
	logger := app.Logger

	if _, err := app.SeedAdmin(ctx); err != nil {
		logger.Error("initial admin seeding failed", "error", err)
	}

	provider, err := app.newProvider(ctx)
	if err != nil {
		return err
	}
	defer provider.Close()

	limiter, err := newLimiter(ctx, app)
	if err != nil {
		return err
	}
	defer limiter.Close()

	clientIPs, err := ratelimit.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	chatCfg := chat.DefaultConfig()
	chatCfg.StreamTimeout = cfg.AIStreamTimeout
	chatCfg.ExposeErrorDetails = cfg.IsDevelopment()
	streaming, err := chat.NewStreamingService(chatCfg, app.Conversations, app.Messages, provider, logger.Named("relay"))
	if err != nil {
		return fmt.Errorf("init streaming service: %w", err)
	}

	templates := handlers.NewTemplates(web.Templates, logger)
	if err := templates.Load(); err != nil {
		return err
	}

	secure := cfg.IsProduction()
	cookieMaxAge := cfg.CookieMaxAge()
	google := handlers.NewGoogleAuthHandler(googleOAuthConfig(cfg), app.AuthService, cookieMaxAge, secure, logger.Named("google"))
	if google == nil {
		logger.Warn("Google sign-in disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET missing")
	}

	router := server.NewRouter(server.Deps{
		Logger:        logger,
		AuthService:   app.AuthService,
		Limiter:       limiter,
		ClientIPs:     clientIPs,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: secure,
		ExposeErrors:  cfg.IsDevelopment(),
		Auth:          handlers.NewAuthHandler(app.AuthService, cookieMaxAge, secure, logger.Named("auth")),
		Google:        google,
		Chat: handlers.NewChatHandler(
			chat.NewChatService(app.Conversations, app.Messages, logger.Named("chat")),
			streaming, logger.Named("chat")),
		Admin: handlers.NewAdminHandler(
			admin_services.NewAdminService(app.Users, app.Conversations, app.Messages),
			app.AuthService, templates, cookieMaxAge, secure, logger.Named("admin")),
		Pages: handlers.NewPageHandler(templates, web.Static),
		Logs:  handlers.NewLogHandler(logger.Named("client")),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment, "provider", provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return eg.Wait()
}
