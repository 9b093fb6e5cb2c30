package ai

import (
	"context"
	"errors"
	"time"
)

// RetryConfig defines simple retry behavior
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryConfig provides sensible defaults
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		Delay:       500 * time.Millisecond,
	}
}

// RetryingProvider re-issues a completion that failed before producing any
// text. Once a fragment has been delivered the error is returned as is, since
// the caller has already forwarded part of the reply.
type RetryingProvider struct {
	CompletionProvider
	config *RetryConfig
}

func WithRetry(p CompletionProvider, config *RetryConfig) *RetryingProvider {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryingProvider{CompletionProvider: p, config: config}
}

func (p *RetryingProvider) StreamChat(ctx context.Context, history []Turn, prompt string, onDelta func(string) error) (FinishReason, error) {
	var (
		reason  FinishReason
		lastErr error
	)
	for attempt := 0; attempt < p.config.MaxAttempts || attempt == 0; attempt++ {
		delivered := false
		reason, lastErr = p.CompletionProvider.StreamChat(ctx, history, prompt, func(delta string) error {
			delivered = true
			return onDelta(delta)
		})
		if lastErr == nil || delivered || !retryable(lastErr) {
			return reason, lastErr
		}

		// Don't wait after last attempt
		if attempt < p.config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return reason, lastErr
			case <-time.After(p.config.Delay):
			}
		}
	}
	return reason, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var aiErr *AIError
	return errors.As(err, &aiErr) && aiErr.Type == ErrTypeProvider
}
