package contract

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition describes a callable tool as advertised to the model.
// Parameters is a JSON-schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolRequest is a single tool invocation requested by the model.
// RawArgs keeps the argument payload as the model emitted it; token
// accounting is done on the raw string, not the decoded map.
type ToolRequest struct {
	Name    string         `json:"name"`
	Args    map[string]any `json:"args,omitempty"`
	RawArgs string         `json:"-"`
}

// Completion is the model's answer to one request. A completion with
// tool requests carries the partial assistant text (possibly empty).
type Completion struct {
	Text         string        `json:"text"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
}
