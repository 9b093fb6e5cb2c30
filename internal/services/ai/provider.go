package ai

import (
	"context"
	"fmt"
)

// NewProvider builds the configured provider. It is meant to be called once
// at start-up; the result is safe for concurrent use.
func NewProvider(ctx context.Context, config *Config) (CompletionProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Provider {
	case ProviderGemini:
		return NewGeminiProvider(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIProvider(config), nil
	default:
		return nil, NewConfigError(fmt.Sprintf("unknown provider %q", config.Provider))
	}
}

// UnavailableProvider fails every request. It stands in for a provider whose
// credentials are missing so the rest of the app can still run locally.
type UnavailableProvider struct {
	Reason string
}

func (p *UnavailableProvider) Name() string { return "unavailable" }

func (p *UnavailableProvider) Close() error { return nil }

func (p *UnavailableProvider) StreamChat(ctx context.Context, history []Turn, prompt string, onDelta func(string) error) (FinishReason, error) {
	return FinishUnspecified, &AIError{Type: ErrTypeUnavailable, Operation: "streaming", Message: p.Reason}
}
