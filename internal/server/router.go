// Package server assembles the HTTP route tree.
package server

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/iyunix/go-gemchat/internal/handlers"
	"github.com/iyunix/go-gemchat/internal/middleware"
	"github.com/iyunix/go-gemchat/internal/ratelimit"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/user_services"
)

// Deps are the handlers and shared services the router needs.
type Deps struct {
	Logger        services.Logger
	AuthService   *user_services.AuthService
	Limiter       ratelimit.Limiter
	ClientIPs     *ratelimit.ClientIPResolver // nil trusts no proxy
	CORSOrigins   []string
	SecureCookies bool
	ExposeErrors  bool

	Auth   *handlers.AuthHandler
	Google *handlers.GoogleAuthHandler // nil when Google sign-in is not configured
	Chat   *handlers.ChatHandler
	Admin  *handlers.AdminHandler
	Pages  *handlers.PageHandler
	Logs   *handlers.LogHandler
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(d.Pages.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(d.Pages.NotFound)

	r.Use(middleware.LoggingMiddleware(d.Logger))
	r.Use(middleware.RecoverPanic(d.Logger, d.ExposeErrors))

	limited := func(name string, h http.HandlerFunc) http.Handler {
		return middleware.RateLimitMiddleware(d.Limiter, d.ClientIPs, name, d.Logger)(
			middleware.AuthSuccessMiddleware(d.Limiter, d.ClientIPs, name, d.Logger)(h))
	}

	// --- Public Routes ---
	r.HandleFunc("/health", d.Pages.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", d.Logs.LogFrontendEvent).Methods(http.MethodPost)
	r.HandleFunc("/", d.Pages.ShowIndexPage).Methods(http.MethodGet)
	r.HandleFunc("/chat-app", d.Pages.ShowIndexPage).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(d.Pages.Static()).Methods(http.MethodGet)

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.Handle("/register", limited("register", d.Auth.Register)).Methods(http.MethodPost)
	authRoutes.Handle("/login", limited("login", d.Auth.Login)).Methods(http.MethodPost)
	authRoutes.HandleFunc("/logout", d.Auth.Logout).Methods(http.MethodPost)
	if d.Google != nil {
		authRoutes.HandleFunc("/google", d.Google.Start).Methods(http.MethodGet)
		authRoutes.HandleFunc("/google/callback", d.Google.Callback).Methods(http.MethodGet)
	} else {
		authRoutes.HandleFunc("/google", handlers.GoogleUnavailable).Methods(http.MethodGet)
		authRoutes.HandleFunc("/google/callback", handlers.GoogleUnavailable).Methods(http.MethodGet)
	}

	requireUser := middleware.NewAuthMiddleware(d.AuthService, d.SecureCookies, d.Logger)
	authRoutes.Handle("/me", requireUser(http.HandlerFunc(d.Auth.Me))).Methods(http.MethodGet)

	// --- Protected Routes (for regular users) ---
	chatRoutes := r.PathPrefix("/api/chat").Subrouter()
	chatRoutes.Use(requireUser)
	chatRoutes.HandleFunc("/conversations", d.Chat.GetConversations).Methods(http.MethodGet)
	chatRoutes.HandleFunc("/conversations/{id:[0-9]+}", d.Chat.GetConversation).Methods(http.MethodGet)
	chatRoutes.HandleFunc("/conversations/{id:[0-9]+}", d.Chat.DeleteConversation).Methods(http.MethodDelete)
	chatRoutes.HandleFunc("/conversations/{id:[0-9]+}/messages", d.Chat.GetMessages).Methods(http.MethodGet)
	chatRoutes.HandleFunc("/stream", d.Chat.StreamChat).Methods(http.MethodPost)

	// --- Admin panel ---
	r.HandleFunc("/admin/login", d.Admin.ShowLogin).Methods(http.MethodGet)
	r.Handle("/admin/login", limited("admin-login", d.Admin.Login)).Methods(http.MethodPost)
	r.HandleFunc("/admin/logout", d.Admin.Logout).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminSession(d.AuthService, d.SecureCookies, http.HandlerFunc(d.Pages.Forbidden), d.Logger))
	admin.HandleFunc("", d.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/", d.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard", d.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/users", d.Admin.Users).Methods(http.MethodGet)
	admin.HandleFunc("/users/{userId:[0-9]+}/conversations", d.Admin.UserConversations).Methods(http.MethodGet)
	admin.HandleFunc("/conversations/{conversationId:[0-9]+}/messages", d.Admin.ConversationMessages).Methods(http.MethodGet)

	adminAPI := admin.PathPrefix("/api").Subrouter()
	adminAPI.Use(middleware.RequireAdmin(d.Logger))
	adminAPI.HandleFunc("/users", d.Admin.APIUsers).Methods(http.MethodGet)

	// Wrapped outside mux so preflight requests, which match no route, still get CORS headers.
	return cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}
