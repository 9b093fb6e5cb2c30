package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvTest, cfg.Environment)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, time.Hour, cfg.CookieMaxAge())
	assert.Equal(t, "/chat-app", cfg.FrontendAppPath)
	assert.Equal(t, []string{"http://localhost:9090"}, cfg.CORSOrigins)
	assert.InDelta(t, 0.7, cfg.AITemperature, 1e-6)
	assert.Equal(t, 1, cfg.AIRetryAttempts)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.GoogleAuthEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_EXPIRES_IN", "3600")
	t.Setenv("AI_STREAM_TIMEOUT", "45s")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("FRONTEND_URL", "https://chat.example/")
	t.Setenv("TRUSTED_PROXIES", "127.0.0.1, 10.0.0.0/8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 45*time.Second, cfg.AIStreamTimeout)
	assert.Equal(t, ProviderOpenAI, cfg.AIProvider)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.GoogleAuthEnabled())
	assert.Equal(t, "https://chat.example", cfg.FrontendURL)
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"unknown provider", Config{AIProvider: "llama", AIStreamTimeout: time.Second, AIRetryAttempts: 1}, true},
		{"zero timeout", Config{AIProvider: ProviderGemini, AIRetryAttempts: 1}, true},
		{"zero retry attempts", Config{AIProvider: ProviderGemini, AIStreamTimeout: time.Second}, true},
		{"production without secrets", Config{Environment: EnvProduction, AIProvider: ProviderGemini, AIStreamTimeout: time.Second, AIRetryAttempts: 1}, true},
		{"production openai key missing", Config{Environment: EnvProduction, AIProvider: ProviderOpenAI, JWTSecret: "x", GeminiAPIKey: "g", AIStreamTimeout: time.Second, AIRetryAttempts: 1}, true},
		{"production complete", Config{Environment: EnvProduction, AIProvider: ProviderGemini, JWTSecret: "x", GeminiAPIKey: "g", AIStreamTimeout: time.Second, AIRetryAttempts: 1}, false},
		{"development fills secret", Config{Environment: EnvDevelopment, AIProvider: ProviderGemini, AIStreamTimeout: time.Second, AIRetryAttempts: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.JWTSecret)
		})
	}
}
