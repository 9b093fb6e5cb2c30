// File: internal/handlers/page_handlers.go
package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iyunix/go-gemchat/internal/services"
)

var pageTemplates = []string{
	"admin_login.html",
	"dashboard.html",
	"users.html",
	"user_conversations.html",
	"conversation_messages.html",
	"error.html",
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	},
}

// Templates parses every page together with layout.html once, on first use.
type Templates struct {
	fsys   fs.FS
	logger services.Logger

	once  sync.Once
	cache map[string]*template.Template
	err   error
}

// NewTemplates reads templates from fsys, which must contain templates/*.html.
func NewTemplates(fsys fs.FS, logger services.Logger) *Templates {
	return &Templates{fsys: fsys, logger: logger}
}

func (t *Templates) load() {
	t.cache = make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		ts, err := template.New(name).Funcs(templateFuncs).ParseFS(t.fsys, "templates/layout.html", "templates/"+name)
		if err != nil {
			t.err = fmt.Errorf("parse template %s: %w", name, err)
			return
		}
		t.cache[name] = ts
	}
}

// Load parses the templates now so a broken template fails at start-up.
func (t *Templates) Load() error {
	t.once.Do(t.load)
	return t.err
}

// Render writes the page with security headers and the given status.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	if err := t.Load(); err != nil {
		t.logger.Error("templates unavailable", "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	ts, ok := t.cache[name]
	if !ok {
		t.logger.Error("template not found in cache", "template", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf strings.Builder
	if err := ts.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		t.logger.Error("template render error", "template", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// RenderError renders the error page.
func (t *Templates) RenderError(w http.ResponseWriter, status int, message, description string) {
	t.Render(w, status, "error.html", map[string]interface{}{
		"Code":        status,
		"Message":     message,
		"Description": description,
	})
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// PageHandler serves the browser app and the fallback pages.
type PageHandler struct {
	templates *Templates
	static    fs.FS
}

// NewPageHandler serves the chat app from static, which must contain
// static/index.html.
func NewPageHandler(templates *Templates, static fs.FS) *PageHandler {
	return &PageHandler{templates: templates, static: static}
}

// ShowIndexPage serves the single-page chat app for / and /chat-app.
func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(h.static, "static/index.html")
	if err != nil {
		h.templates.RenderError(w, http.StatusInternalServerError, "Something went wrong", "")
		return
	}
	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Static serves /static/*.
func (h *PageHandler) Static() http.Handler {
	return http.FileServer(http.FS(h.static))
}

// NotFound answers JSON for API paths and an error page otherwise.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		writeError(w, "API endpoint not found.", http.StatusNotFound)
		return
	}
	h.templates.RenderError(w, http.StatusNotFound, "Page not found", "Sorry, the page you are looking for does not exist!")
}

// Forbidden renders the 403 page shown to non-admins on admin pages.
func (h *PageHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.templates.RenderError(w, http.StatusForbidden, "Forbidden", "Administrator access required.")
}

// Health reports liveness.
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
