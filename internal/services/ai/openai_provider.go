// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) StreamChat(ctx context.Context, history []Turn, prompt string, onDelta func(string) error) (FinishReason, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    toOpenAIMessages(history, prompt),
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
		MaxTokens:   p.config.MaxOutputTokens,
	})
	if err != nil {
		return FinishUnspecified, NewProviderError(ProviderOpenAI, "streaming", "failed to create stream", err)
	}
	defer stream.Close()

	reason := FinishUnspecified
	for {
		response, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return reason, nil
			}
			return reason, NewProviderError(ProviderOpenAI, "streaming", "stream receive error", err)
		}
		if len(response.Choices) == 0 {
			continue
		}

		choice := response.Choices[0]
		if choice.FinishReason != "" {
			reason = fromOpenAIFinishReason(choice.FinishReason)
		}
		if delta := choice.Delta.Content; delta != "" && onDelta != nil {
			if cbErr := onDelta(delta); cbErr != nil {
				return reason, cbErr
			}
		}
	}
}

func toOpenAIMessages(history []Turn, prompt string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
}

func fromOpenAIFinishReason(r openai.FinishReason) FinishReason {
	switch r {
	case openai.FinishReasonStop:
		return FinishStop
	case openai.FinishReasonLength:
		return FinishMaxTokens
	case openai.FinishReasonContentFilter:
		return FinishSafety
	case openai.FinishReasonNull:
		return FinishUnspecified
	default:
		return FinishOther
	}
}
