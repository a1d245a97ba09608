package tool

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/wayfarerlabs/tripmind/agent/sanitize"
	"github.com/wayfarerlabs/tripmind/store"
)

// Dispatcher resolves tool names against the fixed registry and runs the
// matching handler. Nothing escapes Dispatch: unknown names, bad arguments
// and storage errors all come back as error envelopes.
type Dispatcher struct {
	store *store.Store
}

func NewDispatcher(st *store.Store) *Dispatcher {
	return &Dispatcher{store: st}
}

func (d *Dispatcher) Dispatch(ctx context.Context, rawName string, args map[string]any) Envelope {
	name, ok := ParseName(rawName)
	if !ok {
		return Errorf("unknown tool %q", rawName)
	}

	clean, err := sanitize.Arguments(args)
	if err != nil {
		return Errorf("%v", err)
	}

	userID, err := requiredString(clean, "user_id")
	if err != nil {
		return Errorf("%v", err)
	}

	log.Debug().Str("tool", string(name)).Str("user_id", userID).Msg("tool calling")

	switch name {
	case NameStoreMemory:
		return d.storeMemory(ctx, userID, clean)
	case NameRetrieveMemory:
		return d.retrieveMemory(ctx, userID, clean)
	case NameUpdateMemory:
		return d.updateMemory(ctx, userID, clean)
	case NameDeleteMemory:
		return d.deleteMemory(ctx, userID, clean)
	case NameStoreTravelPreference:
		return d.storeTravelPreference(ctx, userID, clean)
	case NameRetrieveTravelPreference:
		return d.retrieveTravelPreference(ctx, userID, clean)
	case NameUpdateTravelPreference:
		return d.updateTravelPreference(ctx, userID, clean)
	case NameDeleteTravelPreference:
		return d.deleteTravelPreference(ctx, userID, clean)
	}
	return Errorf("unknown tool %q", rawName)
}

// Execute implements contract.ToolGateway.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) string {
	return d.Dispatch(ctx, name, args).JSON()
}
