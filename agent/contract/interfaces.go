package contract

import "context"

// ModelClient is the single boundary to the language model. The core owns
// no retry or rate-limit logic for this call.
type ModelClient interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, tools []ToolDefinition) (Completion, error)
}

// ToolGateway executes one requested tool and returns its result envelope
// serialized as JSON. Failures never propagate past this boundary; they
// come back as error-status envelopes.
type ToolGateway interface {
	Execute(ctx context.Context, name string, args map[string]any) string
}

// UsageRecorder accumulates per-tool call and token counts.
type UsageRecorder interface {
	Increment(ctx context.Context, tool string, calls, tokensIn, tokensOut int) error
}

// TokenCounter reports the token length of a text for the active model.
type TokenCounter interface {
	Count(text string) int
}
