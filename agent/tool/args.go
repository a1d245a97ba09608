package tool

import (
	"fmt"

	"github.com/wayfarerlabs/tripmind/store"
)

func requiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("parameter %q is required", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", name)
	}
	return s, nil
}

func optionalString(args map[string]any, name string) (*string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be a string", name)
	}
	return &s, nil
}

// optionalNumber accepts the numeric shapes a JSON decode can produce.
func optionalNumber(args map[string]any, name string) (*float64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		return &n, nil
	case int:
		f := float64(n)
		return &f, nil
	default:
		return nil, fmt.Errorf("parameter %q must be a number", name)
	}
}

func optionalStringList(args map[string]any, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be a list of strings", name)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be a list of strings", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func preferenceFieldsFromArgs(args map[string]any) (store.PreferenceFields, error) {
	var fields store.PreferenceFields
	var err error
	if fields.Value, err = optionalString(args, "value"); err != nil {
		return fields, err
	}
	if fields.Values, err = optionalStringList(args, "values"); err != nil {
		return fields, err
	}
	if fields.MinValue, err = optionalNumber(args, "min_value"); err != nil {
		return fields, err
	}
	if fields.MaxValue, err = optionalNumber(args, "max_value"); err != nil {
		return fields, err
	}
	if fields.Description, err = optionalString(args, "description"); err != nil {
		return fields, err
	}
	return fields, nil
}
