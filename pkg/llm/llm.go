// Package llm wraps the OpenAI-compatible chat completions API behind the
// contract.ModelClient boundary. It owns no retry or rate-limit logic: one
// request, one response.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/wayfarerlabs/tripmind/agent/contract"
)

// Config is decoded from the TRIPMIND_LLM_* environment. Any
// OpenAI-compatible endpoint works through BaseURL.
type Config struct {
	BaseURL             string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey              string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model               string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionTokens int           `envconfig:"MAX_COMPLETION_TOKENS" split_words:"true" default:"2000"`
	Temperature         float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
}

type Client struct {
	api         openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

var _ contract.ModelClient = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("llm: model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := cfg.MaxCompletionTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []contract.Message, tools []contract.ToolDefinition) (contract.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(c.model),
		MaxCompletionTokens: openai.Int(c.maxTokens),
		Temperature:         openai.Float(c.temperature),
		Messages:            buildMessages(systemPrompt, messages),
	}
	if len(tools) > 0 {
		params.Tools = buildTools(tools)
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contract.Completion{}, fmt.Errorf("%w: chat completion: %v", contract.ErrUpstream, err)
	}
	if len(completion.Choices) == 0 {
		return contract.Completion{}, fmt.Errorf("%w: completion has no choices", contract.ErrUpstream)
	}

	msg := completion.Choices[0].Message
	out := contract.Completion{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			return contract.Completion{}, fmt.Errorf("%w: tool call without a name", contract.ErrUpstream)
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return contract.Completion{}, fmt.Errorf("%w: invalid arguments for tool %s: %v", contract.ErrUpstream, name, err)
			}
		}
		out.ToolRequests = append(out.ToolRequests, contract.ToolRequest{
			Name:    name,
			Args:    args,
			RawArgs: tc.Function.Arguments,
		})
	}
	return out, nil
}

func buildMessages(systemPrompt string, messages []contract.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if s := strings.TrimSpace(systemPrompt); s != "" {
		out = append(out, openai.SystemMessage(s))
	}
	for _, m := range messages {
		switch m.Role {
		case contract.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func buildTools(defs []contract.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		tool := openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:       def.Name,
				Parameters: shared.FunctionParameters(def.Parameters),
			},
		}
		if def.Description != "" {
			tool.Function.Description = openai.Opt(def.Description)
		}
		out = append(out, tool)
	}
	return out
}
