package tool

import (
	"context"
	"errors"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/store"
)

func (d *Dispatcher) storeMemory(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := requiredString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}
	value, err := requiredString(args, "value")
	if err != nil {
		return Errorf("%v", err)
	}

	m, err := d.store.StoreMemory(ctx, userID, key, value)
	if err != nil {
		return Errorf("%v", err)
	}
	return Success(map[string]any{
		"user_id":    userID,
		"key":        m.Key,
		"value":      m.Value,
		"updated_at": m.UpdatedAt,
	})
}

func (d *Dispatcher) retrieveMemory(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := optionalString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}

	if key != nil {
		m, err := d.store.RetrieveMemory(ctx, userID, *key)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return NotFoundf("User %s not found", userID)
		case errors.Is(err, store.ErrKeyNotFound):
			return NotFoundf("Memory key '%s' not found", *key)
		case err != nil:
			return Errorf("%v", err)
		}
		return Success(map[string]any{
			"key":        m.Key,
			"value":      m.Value,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		})
	}

	memories, err := d.store.RetrieveMemories(ctx, userID)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return NotFoundf("User %s not found", userID)
	case err != nil:
		return Errorf("%v", err)
	}

	out := make(map[string]any, len(memories))
	for k, m := range memories {
		out[k] = map[string]any{
			"value":      m.Value,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		}
	}
	return Success(map[string]any{
		"count":    len(out),
		"memories": out,
	})
}

func (d *Dispatcher) updateMemory(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := requiredString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}
	value, err := requiredString(args, "value")
	if err != nil {
		return Errorf("%v", err)
	}

	m, err := d.store.UpdateMemory(ctx, userID, key, value)
	switch {
	case errors.Is(err, contract.ErrNotFound):
		return Errorf("Memory key '%s' does not exist", key)
	case err != nil:
		return Errorf("%v", err)
	}
	return Success(map[string]any{
		"key":        m.Key,
		"value":      m.Value,
		"updated_at": m.UpdatedAt,
	})
}

func (d *Dispatcher) deleteMemory(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := requiredString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}

	err = d.store.DeleteMemory(ctx, userID, key)
	switch {
	case errors.Is(err, contract.ErrNotFound):
		return Errorf("Memory key '%s' not found", key)
	case err != nil:
		return Errorf("%v", err)
	}
	return Success(map[string]any{
		"message": "Memory '" + key + "' deleted",
	})
}
