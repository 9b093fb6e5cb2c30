// File: internal/services/ai/config.go
package ai

import "fmt"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string

	// Model Parameters
	Temperature     float32
	TopP            float32
	MaxOutputTokens int
}

func (c *Config) Validate() error {
	if c.Provider != ProviderGemini && c.Provider != ProviderOpenAI {
		return NewConfigError(fmt.Sprintf("unknown provider %q", c.Provider))
	}
	if c.APIKey == "" {
		return NewConfigError("API key is required")
	}
	if c.Model == "" {
		return NewConfigError("model name is required")
	}
	if c.MaxOutputTokens < 0 {
		return NewConfigError("max output tokens cannot be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		Model:           "gemini-1.5-flash",
		Temperature:     0.7,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	}
}
