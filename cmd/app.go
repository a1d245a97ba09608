package cmd

import (
	"fmt"

	"github.com/wayfarerlabs/tripmind/agent/conversation"
	"github.com/wayfarerlabs/tripmind/agent/prompt"
	"github.com/wayfarerlabs/tripmind/agent/tool"
	"github.com/wayfarerlabs/tripmind/analytics"
	"github.com/wayfarerlabs/tripmind/pkg/config"
	"github.com/wayfarerlabs/tripmind/pkg/llm"
	"github.com/wayfarerlabs/tripmind/pkg/tokencount"
	"github.com/wayfarerlabs/tripmind/store"
)

// app bundles the fully wired chat runtime shared by the chat and serve
// commands.
type app struct {
	store   *store.Store
	counter *analytics.Counter
	manager *conversation.Manager
	factory conversation.Factory
}

func newStore() (*store.Store, *analytics.Counter, error) {
	cfg, err := config.Load[store.Config]("TRIPMIND_STORE", envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading database config: %w", err)
	}
	return store.New(*cfg), analytics.NewCounter(cfg.DataDir, cfg.LockTimeout), nil
}

func newApp() (*app, error) {
	st, counter, err := newStore()
	if err != nil {
		return nil, err
	}

	llmCfg, err := config.Load[llm.Config]("TRIPMIND_LLM", envFile)
	if err != nil {
		return nil, fmt.Errorf("loading llm config: %w", err)
	}
	model, err := llm.New(*llmCfg)
	if err != nil {
		return nil, err
	}
	tokens, err := tokencount.New(model.Model())
	if err != nil {
		return nil, fmt.Errorf("initializing token counter: %w", err)
	}

	dispatcher := tool.NewDispatcher(st)
	defs := tool.Definitions()
	factory := func(userID string) *conversation.Conversation {
		return conversation.New(userID, prompt.System(userID), model, defs, dispatcher,
			conversation.WithUsageRecorder(counter),
			conversation.WithTokenCounter(tokens))
	}

	return &app{
		store:   st,
		counter: counter,
		manager: conversation.NewManager(factory),
		factory: factory,
	}, nil
}
