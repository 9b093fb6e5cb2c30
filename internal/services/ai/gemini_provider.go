package ai

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiProvider streams completions from the Google Generative Language API.
// The client and model handle are built once and shared by all requests.
type GeminiProvider struct {
	config *Config
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, NewProviderError(ProviderGemini, "init", "failed to create client", err)
	}

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(config.Temperature)
	model.SetTopP(config.TopP)
	if config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(config.MaxOutputTokens))
	}
	model.SafetySettings = geminiSafetySettings()

	return &GeminiProvider{config: config, client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

func (p *GeminiProvider) Close() error { return p.client.Close() }

func (p *GeminiProvider) StreamChat(ctx context.Context, history []Turn, prompt string, onDelta func(string) error) (FinishReason, error) {
	session := p.model.StartChat()
	session.History = toGeminiHistory(history)

	iter := session.SendMessageStream(ctx, genai.Text(prompt))
	reason := FinishUnspecified
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return reason, nil
		}
		if err != nil {
			var blocked *genai.BlockedError
			if errors.As(err, &blocked) {
				return blockedReason(blocked), nil
			}
			return reason, NewProviderError(ProviderGemini, "streaming", "stream receive error", err)
		}
		if len(resp.Candidates) == 0 {
			continue
		}

		candidate := resp.Candidates[0]
		if candidate.FinishReason != genai.FinishReasonUnspecified {
			reason = fromGeminiFinishReason(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok || text == "" || onDelta == nil {
				continue
			}
			if cbErr := onDelta(string(text)); cbErr != nil {
				return reason, cbErr
			}
		}
	}
}

func geminiSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockMediumAndAbove})
	}
	return settings
}

func toGeminiHistory(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := RoleUser
		if turn.Role == RoleModel {
			role = RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return contents
}

func fromGeminiFinishReason(r genai.FinishReason) FinishReason {
	switch r {
	case genai.FinishReasonUnspecified:
		return FinishUnspecified
	case genai.FinishReasonStop:
		return FinishStop
	case genai.FinishReasonMaxTokens:
		return FinishMaxTokens
	case genai.FinishReasonSafety:
		return FinishSafety
	case genai.FinishReasonRecitation:
		return FinishRecitation
	default:
		return FinishOther
	}
}

// blockedReason maps a blocked prompt or candidate to a finish reason.
func blockedReason(err *genai.BlockedError) FinishReason {
	if err.Candidate != nil {
		return fromGeminiFinishReason(err.Candidate.FinishReason)
	}
	return FinishSafety
}
