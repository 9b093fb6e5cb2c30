// G:\go_gemchat\internal\services\ai\interface.go
package ai

import "context"

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one prior message of a conversation, in provider-neutral form.
type Turn struct {
	Role string
	Text string
}

// FinishReason is why the provider stopped generating.
type FinishReason string

const (
	FinishUnspecified FinishReason = "FINISH_REASON_UNSPECIFIED"
	FinishStop        FinishReason = "STOP"
	FinishMaxTokens   FinishReason = "MAX_TOKENS"
	FinishSafety      FinishReason = "SAFETY"
	FinishRecitation  FinishReason = "RECITATION"
	FinishOther       FinishReason = "OTHER"
)

// IsNormal reports whether generation ended on its own rather than being cut off.
func (f FinishReason) IsNormal() bool {
	return f == FinishStop || f == FinishUnspecified || f == ""
}

// CompletionProvider streams chat completions.
type CompletionProvider interface {
	// StreamChat sends history plus prompt and calls onDelta for every text
	// fragment in generation order. An error returned by onDelta aborts the
	// stream and is returned unchanged.
	StreamChat(ctx context.Context, history []Turn, prompt string, onDelta func(string) error) (FinishReason, error)
	Name() string
	Close() error
}
