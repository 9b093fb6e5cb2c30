// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Environment string
	ServerPort  string
	DatabaseURL string
	DBLogLevel  string

	JWTSecret             string
	JWTExpiresIn          time.Duration
	JWTCookieExpiresHours int

	AIProvider        string
	GeminiAPIKey      string
	GeminiModelName   string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModelName   string
	AITemperature     float32
	AITopP            float32
	AIMaxOutputTokens int
	AIStreamTimeout   time.Duration
	AIRetryAttempts   int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	FrontendURL        string
	FrontendAppPath    string
	CORSOrigins        []string

	RedisURL             string
	TrustedProxies       []string
	RateLimitMaxAttempts int
	RateLimitWindow      time.Duration
	RateLimitBan         time.Duration

	InitialAdminUsername string
	InitialAdminEmail    string
	InitialAdminPassword string
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	env := strings.ToLower(getEnv("ENV", EnvDevelopment))
	if env != EnvProduction {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
		env = strings.ToLower(getEnv("ENV", EnvDevelopment))
	}

	port := getEnv("SERVER_PORT", "8080")
	cfg := &Config{
		Environment: env,
		ServerPort:  port,
		DatabaseURL: getEnv("DATABASE_URL", "sqlite:./data/gemchat_dev.db"),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTExpiresIn:          getEnvAsDuration("JWT_EXPIRES_IN", time.Hour),
		JWTCookieExpiresHours: getEnvAsInt("JWT_COOKIE_EXPIRES_IN_HOURS", 1),

		AIProvider:        strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelName:   getEnv("GEMINI_MODEL_NAME", "gemini-1.5-flash"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OpenAIModelName:   getEnv("OPENAI_MODEL_NAME", "gpt-4o-mini"),
		AITemperature:     getEnvAsFloat("AI_TEMPERATURE", 0.7),
		AITopP:            getEnvAsFloat("AI_TOP_P", 0.95),
		AIMaxOutputTokens: getEnvAsInt("AI_MAX_OUTPUT_TOKENS", 8192),
		AIStreamTimeout:   getEnvAsDuration("AI_STREAM_TIMEOUT", 2*time.Minute),
		AIRetryAttempts:   getEnvAsInt("AI_RETRY_ATTEMPTS", 1),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:"+port+"/api/auth/google/callback"),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:"+port), "/"),
		FrontendAppPath:    getEnv("FRONTEND_URL_APP_PATH", "/chat-app"),
		CORSOrigins:        getEnvAsList("CORS_ORIGINS", []string{"http://localhost:" + port}),

		RedisURL:             getEnv("REDIS_URL", ""),
		TrustedProxies:       getEnvAsList("TRUSTED_PROXIES", nil),
		RateLimitMaxAttempts: getEnvAsInt("RATE_LIMIT_MAX_ATTEMPTS", 10),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitBan:         getEnvAsDuration("RATE_LIMIT_BAN", 30*time.Minute),

		InitialAdminUsername: getEnv("INITIAL_ADMIN_USERNAME", "admin"),
		InitialAdminEmail:    getEnv("INITIAL_ADMIN_EMAIL", "admin@example.com"),
		InitialAdminPassword: getEnv("INITIAL_ADMIN_PASSWORD", "admin"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with. Production additionally
// requires secrets that have no safe default.
func (c *Config) Validate() error {
	if c.AIProvider != ProviderGemini && c.AIProvider != ProviderOpenAI {
		return fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.AIProvider)
	}
	if c.AIStreamTimeout <= 0 {
		return fmt.Errorf("AI_STREAM_TIMEOUT must be positive")
	}
	if c.AIRetryAttempts < 1 {
		return fmt.Errorf("AI_RETRY_ATTEMPTS must be at least 1")
	}

	if c.IsProduction() {
		missing := []string{}
		if c.JWTSecret == "" {
			missing = append(missing, "JWT_SECRET")
		}
		if c.AIProvider == ProviderGemini && c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
		if c.AIProvider == ProviderOpenAI && c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	} else if c.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is not set; using an insecure development secret")
		c.JWTSecret = "dev-insecure-secret"
	}
	return nil
}

func (c *Config) IsProduction() bool  { return c.Environment == EnvProduction }
func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

// GoogleAuthEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) CookieMaxAge() time.Duration {
	return time.Duration(c.JWTCookieExpiresHours) * time.Hour
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float32) float32 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 32)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return float32(f)
}

// getEnvAsDuration accepts Go durations ("90s", "1h") and, like the old
// JWT_EXPIRES_IN values, a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
