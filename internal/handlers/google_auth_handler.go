package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/iyunix/go-gemchat/internal/middleware"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/user_services"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStatePath   = "/api/auth/google"
	googleUserInfo   = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleOAuthConfig holds the client registration and redirect targets.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	// SuccessURL receives the browser after sign-in, FailureURL after an error.
	SuccessURL string
	FailureURL string
}

// OAuthExchanger is the part of oauth2.Config the handler uses.
type OAuthExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// ProfileFetcher loads the signed-in Google profile for a token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token *oauth2.Token) (user_services.GoogleProfile, error)
}

type GoogleAuthHandler struct {
	oauth         OAuthExchanger
	profiles      ProfileFetcher
	authService   *user_services.AuthService
	successURL    string
	failureURL    string
	cookieMaxAge  time.Duration
	secureCookies bool
	logger        services.Logger
}

// NewGoogleAuthHandler returns nil when the client id or secret is missing;
// the router then answers 503 for the Google routes.
func NewGoogleAuthHandler(cfg GoogleOAuthConfig, authService *user_services.AuthService, cookieMaxAge time.Duration, secureCookies bool, logger services.Logger) *GoogleAuthHandler {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
	return &GoogleAuthHandler{
		oauth:         oauthCfg,
		profiles:      &googleProfileFetcher{config: oauthCfg},
		authService:   authService,
		successURL:    cfg.SuccessURL,
		failureURL:    cfg.FailureURL,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// WithClients replaces the OAuth exchanger and profile fetcher.
func (h *GoogleAuthHandler) WithClients(oauth OAuthExchanger, profiles ProfileFetcher) *GoogleAuthHandler {
	h.oauth = oauth
	h.profiles = profiles
	return h
}

// Start handles GET /api/auth/google.
func (h *GoogleAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	middleware.SetSessionCookie(w, oauthStateCookie, oauthStatePath, state, 10*time.Minute, h.secureCookies)
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/google/callback.
func (h *GoogleAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, oauthStateCookie, oauthStatePath, h.secureCookies)

	fail := func(reason string, err error) {
		h.logger.Warn("[GoogleAuth] sign-in failed", "reason", reason, "error", err)
		http.Redirect(w, r, h.failureURL, http.StatusFound)
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		fail("state mismatch", err)
		return
	}
	if msg := r.URL.Query().Get("error"); msg != "" {
		fail("consent denied", fmt.Errorf("%s", msg))
		return
	}

	token, err := h.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		fail("code exchange", err)
		return
	}
	profile, err := h.profiles.FetchProfile(r.Context(), token)
	if err != nil {
		fail("profile fetch", err)
		return
	}

	user, appToken, err := h.authService.LoginWithGoogle(r.Context(), profile)
	if err != nil {
		fail("account resolution", err)
		return
	}

	h.logger.Info("[GoogleAuth] sign-in succeeded", "user_id", user.ID)
	middleware.SetSessionCookie(w, middleware.AuthCookieName, "/", appToken, h.cookieMaxAge, h.secureCookies)
	http.Redirect(w, r, h.successURL, http.StatusFound)
}

// GoogleUnavailable answers the Google routes when sign-in is not configured.
func GoogleUnavailable(w http.ResponseWriter, r *http.Request) {
	writeError(w, "Google sign-in is not configured.", http.StatusServiceUnavailable)
}

type googleProfileFetcher struct {
	config *oauth2.Config
}

func (f *googleProfileFetcher) FetchProfile(ctx context.Context, token *oauth2.Token) (user_services.GoogleProfile, error) {
	client := f.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfo, nil)
	if err != nil {
		return user_services.GoogleProfile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return user_services.GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return user_services.GoogleProfile{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return user_services.GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return user_services.GoogleProfile{
		ID:          info.Sub,
		Email:       info.Email,
		DisplayName: info.Name,
		GivenName:   info.GivenName,
		FamilyName:  info.FamilyName,
	}, nil
}
