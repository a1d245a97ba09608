package tool

import (
	"context"
	"errors"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/store"
)

func preferencePayload(p store.TravelPreference) map[string]any {
	return map[string]any{
		"value":       p.Value,
		"values":      p.Values,
		"min_value":   p.MinValue,
		"max_value":   p.MaxValue,
		"description": p.Description,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func (d *Dispatcher) storeTravelPreference(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := requiredString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}
	fields, err := preferenceFieldsFromArgs(args)
	if err != nil {
		return Errorf("%v", err)
	}

	p, err := d.store.StoreTravelPreference(ctx, userID, key, fields)
	if err != nil {
		return Errorf("%v", err)
	}
	return Success(map[string]any{
		"user_id":    userID,
		"key":        p.Key,
		"preference": preferencePayload(p),
	})
}

func (d *Dispatcher) retrieveTravelPreference(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := optionalString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}

	if key != nil {
		p, err := d.store.RetrieveTravelPreference(ctx, userID, *key)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			// A user with no record at all yields the distinct
			// collection-absent result, same as the no-key path.
			return absentPreferences()
		case errors.Is(err, store.ErrKeyNotFound):
			return NotFoundf("Preference '%s' not found", *key)
		case err != nil:
			return Errorf("%v", err)
		}
		return Success(map[string]any{
			"preference": preferencePayload(p),
		})
	}

	prefs, err := d.store.RetrieveTravelPreferences(ctx, userID)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return absentPreferences()
	case err != nil:
		return Errorf("%v", err)
	}

	out := make(map[string]any, len(prefs))
	for k, p := range prefs {
		out[k] = preferencePayload(p)
	}
	return Success(map[string]any{
		"count":              len(out),
		"travel_preferences": out,
	})
}

func absentPreferences() Envelope {
	return Envelope{
		"status":             StatusNotFound,
		"count":              0,
		"travel_preferences": map[string]any{},
	}
}

func (d *Dispatcher) updateTravelPreference(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := requiredString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}
	fields, err := preferenceFieldsFromArgs(args)
	if err != nil {
		return Errorf("%v", err)
	}

	p, err := d.store.UpdateTravelPreference(ctx, userID, key, fields)
	switch {
	case errors.Is(err, contract.ErrNotFound):
		return Errorf("Preference '%s' does not exist", key)
	case err != nil:
		return Errorf("%v", err)
	}
	return Success(map[string]any{
		"key":        p.Key,
		"preference": preferencePayload(p),
	})
}

func (d *Dispatcher) deleteTravelPreference(ctx context.Context, userID string, args map[string]any) Envelope {
	key, err := requiredString(args, "key")
	if err != nil {
		return Errorf("%v", err)
	}

	err = d.store.DeleteTravelPreference(ctx, userID, key)
	switch {
	case errors.Is(err, contract.ErrNotFound):
		return Errorf("Preference '%s' not found", key)
	case err != nil:
		return Errorf("%v", err)
	}
	return Success(map[string]any{
		"message": "Preference '" + key + "' deleted",
	})
}
