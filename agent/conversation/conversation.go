// Package conversation runs the tool-calling chat loop for a single user and
// manages the set of live sessions.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/agent/sanitize"
)

const (
	// DefaultMaxHistory bounds the retained transcript. Older messages are
	// dropped from the front once the cap is exceeded.
	DefaultMaxHistory = 200

	fallbackReply = "No response generated"
)

// Conversation holds one user's transcript and drives the model until it
// stops requesting tools. It is not safe for concurrent use; Manager
// serializes access per user.
type Conversation struct {
	userID       string
	systemPrompt string
	model        contract.ModelClient
	tools        []contract.ToolDefinition
	gateway      contract.ToolGateway
	usage        contract.UsageRecorder
	tokens       contract.TokenCounter
	history      []contract.Message
	maxHistory   int
}

// Option adjusts a Conversation at construction time.
type Option func(*Conversation)

// WithMaxHistory overrides the transcript cap. Values below 1 are ignored.
func WithMaxHistory(n int) Option {
	return func(c *Conversation) {
		if n > 0 {
			c.maxHistory = n
		}
	}
}

// WithUsageRecorder attaches a per-tool usage sink.
func WithUsageRecorder(r contract.UsageRecorder) Option {
	return func(c *Conversation) { c.usage = r }
}

// WithTokenCounter attaches a token counter for usage accounting.
func WithTokenCounter(tc contract.TokenCounter) Option {
	return func(c *Conversation) { c.tokens = tc }
}

func New(userID, systemPrompt string, model contract.ModelClient, tools []contract.ToolDefinition, gateway contract.ToolGateway, opts ...Option) *Conversation {
	c := &Conversation{
		userID:       userID,
		systemPrompt: systemPrompt,
		model:        model,
		tools:        tools,
		gateway:      gateway,
		maxHistory:   DefaultMaxHistory,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends one user message through the loop and returns the assistant's
// final reply. Model failures abort the turn; tool failures are reported back
// to the model inside the transcript instead.
func (c *Conversation) Chat(ctx context.Context, message string) (string, error) {
	msg, err := sanitize.Message(message)
	if err != nil {
		return "", err
	}

	c.append(contract.Message{Role: contract.RoleUser, Content: msg})

	completion, err := c.model.Complete(ctx, c.systemPrompt, c.history, c.tools)
	if err != nil {
		return "", fmt.Errorf("completing turn for %s: %w", c.userID, err)
	}

	for len(completion.ToolRequests) > 0 {
		// The partial assistant text goes into the transcript even when
		// empty, so the model re-reads exactly what it produced.
		c.append(contract.Message{Role: contract.RoleAssistant, Content: completion.Text})

		for _, req := range completion.ToolRequests {
			result := c.gateway.Execute(ctx, req.Name, req.Args)
			c.append(contract.Message{
				Role:    contract.RoleUser,
				Content: fmt.Sprintf("Tool '%s' returned: %s", req.Name, result),
			})
			c.recordUsage(ctx, req, result)
		}

		completion, err = c.model.Complete(ctx, c.systemPrompt, c.history, c.tools)
		if err != nil {
			return "", fmt.Errorf("completing turn for %s: %w", c.userID, err)
		}
	}

	reply := strings.TrimSpace(completion.Text)
	if reply == "" {
		reply = fallbackReply
	}
	c.append(contract.Message{Role: contract.RoleAssistant, Content: reply})
	return reply, nil
}

// History returns a copy of the retained transcript. The system prompt is
// never part of it.
func (c *Conversation) History() []contract.Message {
	out := make([]contract.Message, len(c.history))
	copy(out, c.history)
	return out
}

// Clear drops the transcript while keeping the session configured.
func (c *Conversation) Clear() {
	c.history = nil
}

func (c *Conversation) append(m contract.Message) {
	c.history = append(c.history, m)
	if over := len(c.history) - c.maxHistory; over > 0 {
		c.history = append(c.history[:0:0], c.history[over:]...)
	}
}

func (c *Conversation) recordUsage(ctx context.Context, req contract.ToolRequest, result string) {
	if c.usage == nil {
		return
	}
	var in, out int
	if c.tokens != nil {
		in = c.tokens.Count(req.RawArgs)
		out = c.tokens.Count(result)
	}
	if err := c.usage.Increment(ctx, req.Name, 1, in, out); err != nil {
		log.Warn().Err(err).Str("tool", req.Name).Msg("usage recording failed")
	}
}
