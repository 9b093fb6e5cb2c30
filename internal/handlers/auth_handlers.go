// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/iyunix/go-gemchat/internal/dtos"
	"github.com/iyunix/go-gemchat/internal/middleware"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/user_services"
)

type AuthHandler struct {
	authService   *user_services.AuthService
	cookieMaxAge  time.Duration
	secureCookies bool
	logger        services.Logger
}

func NewAuthHandler(authService *user_services.AuthService, cookieMaxAge time.Duration, secureCookies bool, logger services.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func decodeCredentials(r *http.Request) (dtos.CredentialsRequestDTO, error) {
	var req dtos.CredentialsRequestDTO
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, "Username and password are required.", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrMissingCredentials):
			writeError(w, "Username and password are required.", http.StatusBadRequest)
		case errors.Is(err, user_services.ErrInvalidUsername):
			writeError(w, "Username must be between 3 and 30 characters.", http.StatusBadRequest)
		case errors.Is(err, user_services.ErrUsernameTaken):
			writeError(w, "Username already exists.", http.StatusBadRequest)
		default:
			h.logger.Error("[AuthHandler] registration failed", "error", err)
			writeError(w, "Error registering user.", http.StatusInternalServerError)
		}
		return
	}

	middleware.SetSessionCookie(w, middleware.AuthCookieName, "/", token, h.cookieMaxAge, h.secureCookies)
	writeJSON(w, http.StatusCreated, dtos.AuthResponseDTO{
		Message: "User registered successfully.",
		Token:   token,
		User:    dtos.FromDomain(*user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, "Username and password are required.", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrMissingCredentials):
			writeError(w, "Username and password are required.", http.StatusBadRequest)
		case errors.Is(err, user_services.ErrInvalidCredentials):
			writeError(w, "Invalid username or password.", http.StatusUnauthorized)
		default:
			h.logger.Error("[AuthHandler] login failed", "error", err)
			writeError(w, "Error logging in.", http.StatusInternalServerError)
		}
		return
	}

	middleware.SetSessionCookie(w, middleware.AuthCookieName, "/", token, h.cookieMaxAge, h.secureCookies)
	writeJSON(w, http.StatusOK, dtos.AuthResponseDTO{
		Message: "Login successful.",
		Token:   token,
		User:    dtos.FromDomain(*user),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "Not authorized, no token.", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*user))
}

// Logout handles POST /api/auth/logout. It needs no valid session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, middleware.AuthCookieName, "/", h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful."})
}
