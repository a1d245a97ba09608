// Package tool exposes the eight CRUD operations over the memory store as
// model-callable tools and dispatches requested invocations against them.
package tool

import "github.com/wayfarerlabs/tripmind/agent/contract"

// Name enumerates the callable tools. Dispatch matches it exhaustively, so
// a name outside this set is an explicit unknown-tool error, never a
// silent fallthrough.
type Name string

const (
	NameStoreMemory              Name = "store_memory"
	NameRetrieveMemory           Name = "retrieve_memory"
	NameUpdateMemory             Name = "update_memory"
	NameDeleteMemory             Name = "delete_memory"
	NameStoreTravelPreference    Name = "store_travel_preference"
	NameRetrieveTravelPreference Name = "retrieve_travel_preference"
	NameUpdateTravelPreference   Name = "update_travel_preference"
	NameDeleteTravelPreference   Name = "delete_travel_preference"
)

var All = []Name{
	NameStoreMemory,
	NameRetrieveMemory,
	NameUpdateMemory,
	NameDeleteMemory,
	NameStoreTravelPreference,
	NameRetrieveTravelPreference,
	NameUpdateTravelPreference,
	NameDeleteTravelPreference,
}

func ParseName(s string) (Name, bool) {
	switch n := Name(s); n {
	case NameStoreMemory, NameRetrieveMemory, NameUpdateMemory, NameDeleteMemory,
		NameStoreTravelPreference, NameRetrieveTravelPreference,
		NameUpdateTravelPreference, NameDeleteTravelPreference:
		return n, true
	}
	return "", false
}

// Definitions returns the full tool set in the shape handed to the model.
func Definitions() []contract.ToolDefinition {
	userID := stringProp("Unique identifier for the user")
	memoryKey := stringProp("Memory key (e.g., 'favourite_color', 'name', 'occupation')")
	prefKey := stringProp("Preference key (e.g., 'favorite_destination', 'budget')")

	return []contract.ToolDefinition{
		{
			Name:        string(NameStoreMemory),
			Description: "Store general-purpose memories about the user (name, occupation, interests, etc). Use this for personal information that is NOT travel-related.",
			Parameters: objectSchema([]string{"user_id", "key", "value"}, map[string]any{
				"user_id": userID,
				"key":     memoryKey,
				"value":   stringProp("Memory value to store"),
			}),
		},
		{
			Name:        string(NameRetrieveMemory),
			Description: "Retrieve a specific memory or all memories for a user.",
			Parameters: objectSchema([]string{"user_id"}, map[string]any{
				"user_id": userID,
				"key":     stringProp("Optional memory key. If not provided, returns all memories"),
			}),
		},
		{
			Name:        string(NameUpdateMemory),
			Description: "Update an existing memory.",
			Parameters: objectSchema([]string{"user_id", "key", "value"}, map[string]any{
				"user_id": userID,
				"key":     stringProp("Memory key to update"),
				"value":   stringProp("New memory value"),
			}),
		},
		{
			Name:        string(NameDeleteMemory),
			Description: "Delete a memory.",
			Parameters: objectSchema([]string{"user_id", "key"}, map[string]any{
				"user_id": userID,
				"key":     stringProp("Memory key to delete"),
			}),
		},
		{
			Name:        string(NameStoreTravelPreference),
			Description: "Store a travel preference for a user, replacing any previous preference under the same key.",
			Parameters: objectSchema([]string{"user_id", "key"}, map[string]any{
				"user_id":     userID,
				"key":         prefKey,
				"value":       stringProp("Single preference value"),
				"values":      stringArrayProp("Multiple preference values"),
				"min_value":   numberProp("Minimum value (e.g., budget minimum)"),
				"max_value":   numberProp("Maximum value (e.g., budget maximum)"),
				"description": stringProp("Description of the preference"),
			}),
		},
		{
			Name:        string(NameRetrieveTravelPreference),
			Description: "Retrieve a travel preference or all preferences for a user.",
			Parameters: objectSchema([]string{"user_id"}, map[string]any{
				"user_id": userID,
				"key":     stringProp("Optional preference key. If not provided, returns all preferences"),
			}),
		},
		{
			Name:        string(NameUpdateTravelPreference),
			Description: "Update an existing travel preference. Only the provided fields change.",
			Parameters: objectSchema([]string{"user_id", "key"}, map[string]any{
				"user_id":     userID,
				"key":         stringProp("Preference key to update"),
				"value":       stringProp("Updated single value"),
				"values":      stringArrayProp("Updated multiple values"),
				"min_value":   numberProp("Updated minimum value"),
				"max_value":   numberProp("Updated maximum value"),
				"description": stringProp("Updated description"),
			}),
		},
		{
			Name:        string(NameDeleteTravelPreference),
			Description: "Delete a travel preference.",
			Parameters: objectSchema([]string{"user_id", "key"}, map[string]any{
				"user_id": userID,
				"key":     stringProp("Preference key to delete"),
			}),
		},
	}
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func numberProp(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func stringArrayProp(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}
