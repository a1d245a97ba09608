package tool

import (
	"encoding/json"
	"fmt"
)

const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// Envelope is the normalized result shape every tool invocation returns.
// It always carries a "status" key.
type Envelope map[string]any

func Success(fields map[string]any) Envelope {
	e := Envelope{"status": StatusSuccess}
	for k, v := range fields {
		e[k] = v
	}
	return e
}

func Errorf(format string, args ...any) Envelope {
	return Envelope{"status": StatusError, "message": fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) Envelope {
	return Envelope{"status": StatusNotFound, "message": fmt.Sprintf(format, args...)}
}

// JSON serializes the envelope; this is the string appended to the
// conversation history and measured for token accounting.
func (e Envelope) JSON() string {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":"encode result: %v"}`, err)
	}
	return string(payload)
}

func (e Envelope) Status() string {
	s, _ := e["status"].(string)
	return s
}
