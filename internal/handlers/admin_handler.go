// File: internal/handlers/admin_handler.go
package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/dtos"
	"github.com/iyunix/go-gemchat/internal/middleware"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/admin_services"
	"github.com/iyunix/go-gemchat/internal/services/user_services"
)

const adminHome = "/admin/dashboard"

var adminLoginErrors = map[string]string{
	"SessionExpired":       "Your session has expired. Please log in again.",
	"InvalidSession":       "Your session is invalid. Please log in again.",
	"UserNotFoundForToken": "Your account could not be found. Please log in again.",
}

var adminLoginMessages = map[string]string{
	"LoggedOut": "You have been logged out.",
}

type AdminHandler struct {
	adminService  *admin_services.AdminService
	authService   *user_services.AuthService
	templates     *Templates
	markdown      *markdownRenderer
	cookieMaxAge  time.Duration
	secureCookies bool
	logger        services.Logger
}

func NewAdminHandler(
	adminService *admin_services.AdminService,
	authService *user_services.AuthService,
	templates *Templates,
	cookieMaxAge time.Duration,
	secureCookies bool,
	logger services.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		authService:   authService,
		templates:     templates,
		markdown:      newMarkdownRenderer(),
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// safeReturnTo keeps post-login redirects inside the admin panel.
func safeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/admin") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return adminHome
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return adminHome
	}
	if u.Path != "/admin" && !strings.HasPrefix(u.Path, "/admin/") {
		return adminHome
	}
	if strings.HasPrefix(u.Path, "/admin/login") || strings.HasPrefix(u.Path, "/admin/logout") {
		return adminHome
	}
	return raw
}

func (h *AdminHandler) renderLogin(w http.ResponseWriter, status int, data map[string]interface{}) {
	h.templates.Render(w, status, "admin_login.html", data)
}

// ShowLogin handles GET /admin/login.
func (h *AdminHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.AdminCookieName); err == nil && cookie.Value != "" {
		user, err := h.authService.ResolveToken(r.Context(), cookie.Value)
		if err == nil && user.IsAdmin {
			http.Redirect(w, r, adminHome, http.StatusSeeOther)
			return
		}
		middleware.ClearSessionCookie(w, middleware.AdminCookieName, middleware.AdminCookiePath, h.secureCookies)
	}

	query := r.URL.Query()
	data := map[string]interface{}{"ReturnTo": query.Get("returnTo")}
	if msg, ok := adminLoginErrors[query.Get("error")]; ok {
		data["Error"] = msg
	}
	if msg, ok := adminLoginMessages[query.Get("message")]; ok {
		data["Message"] = msg
	}
	if query.Get("unauthorized") == "true" {
		data["Message"] = "Please log in to continue."
	}
	h.renderLogin(w, http.StatusOK, data)
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, map[string]interface{}{"Error": "Invalid form submission."})
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	returnTo := r.PostForm.Get("returnTo")
	if returnTo == "" {
		returnTo = r.URL.Query().Get("returnTo")
	}
	data := map[string]interface{}{"Username": username, "ReturnTo": returnTo}

	user, token, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrMissingCredentials):
			data["Error"] = "Username and password are required."
			h.renderLogin(w, http.StatusBadRequest, data)
		case errors.Is(err, user_services.ErrInvalidCredentials):
			data["Error"] = "Invalid username or password."
			h.renderLogin(w, http.StatusUnauthorized, data)
		default:
			h.logger.Error("[AdminHandler] login failed", "error", err)
			data["Error"] = "An internal server error occurred during login."
			h.renderLogin(w, http.StatusInternalServerError, data)
		}
		return
	}
	if !user.IsAdmin {
		h.logger.Warn("[AdminHandler] non-admin attempted admin login", "user_id", user.ID)
		data["Error"] = "Access denied. Not an admin user."
		h.renderLogin(w, http.StatusForbidden, data)
		return
	}

	middleware.SetSessionCookie(w, middleware.AdminCookieName, middleware.AdminCookiePath, token, h.cookieMaxAge, h.secureCookies)
	http.Redirect(w, r, safeReturnTo(returnTo), http.StatusSeeOther)
}

// Logout handles GET /admin/logout.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, middleware.AdminCookieName, middleware.AdminCookiePath, h.secureCookies)
	http.Redirect(w, r, "/admin/login?message=LoggedOut", http.StatusSeeOther)
}

func (h *AdminHandler) page(r *http.Request, data map[string]interface{}) map[string]interface{} {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		data["LoggedInUser"] = user
	}
	return data
}

// Dashboard handles GET /admin and /admin/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("[AdminHandler] dashboard failed", "error", err)
		h.templates.RenderError(w, http.StatusInternalServerError, "Could not load dashboard.", "")
		return
	}
	h.templates.Render(w, http.StatusOK, "dashboard.html", h.page(r, map[string]interface{}{"Stats": stats}))
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.GetAllUsers(r.Context())
	if err != nil {
		h.logger.Error("[AdminHandler] Error getting all users", "error", err)
		h.templates.RenderError(w, http.StatusInternalServerError, "Could not load users list.", "")
		return
	}
	h.templates.Render(w, http.StatusOK, "users.html", h.page(r, map[string]interface{}{"Users": users}))
}

// UserConversations handles GET /admin/users/{userId}/conversations.
func (h *AdminHandler) UserConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		h.templates.RenderError(w, http.StatusNotFound, "User not found.", "")
		return
	}

	user, conversations, err := h.adminService.UserConversations(r.Context(), userID)
	if err != nil {
		if errors.Is(err, admin_services.ErrUserNotFound) {
			h.templates.RenderError(w, http.StatusNotFound, "User not found.", "")
			return
		}
		h.logger.Error("[AdminHandler] user conversations failed", "user_id", userID, "error", err)
		h.templates.RenderError(w, http.StatusInternalServerError, "Could not load user conversations.", "")
		return
	}
	h.templates.Render(w, http.StatusOK, "user_conversations.html", h.page(r, map[string]interface{}{
		"TargetUser":    user,
		"Conversations": conversations,
	}))
}

// renderedMessage is a message with its Markdown body converted to HTML.
type renderedMessage struct {
	domain.Message
	HTML template.HTML
}

// ConversationMessages handles GET /admin/conversations/{conversationId}/messages.
func (h *AdminHandler) ConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := pathID(r, "conversationId")
	if !ok {
		h.templates.RenderError(w, http.StatusNotFound, "Conversation not found.", "")
		return
	}

	transcript, err := h.adminService.ConversationMessages(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, admin_services.ErrConversationNotFound) {
			h.templates.RenderError(w, http.StatusNotFound, "Conversation not found.", "")
			return
		}
		h.logger.Error("[AdminHandler] conversation messages failed", "conversation_id", conversationID, "error", err)
		h.templates.RenderError(w, http.StatusInternalServerError, "Could not load messages.", "")
		return
	}

	messages := make([]renderedMessage, 0, len(transcript.Messages))
	for _, m := range transcript.Messages {
		messages = append(messages, renderedMessage{Message: m, HTML: h.markdown.Render(m.Content)})
	}
	h.templates.Render(w, http.StatusOK, "conversation_messages.html", h.page(r, map[string]interface{}{
		"Conversation": transcript.Conversation,
		"Owner":        transcript.Owner,
		"Messages":     messages,
	}))
}

// APIUsers handles GET /admin/api/users.
func (h *AdminHandler) APIUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.GetAllUsers(r.Context())
	if err != nil {
		h.logger.Error("[AdminHandler] Error getting all users", "error", err)
		writeError(w, "Failed to retrieve users.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToAdminDomainSlice(users))
}
