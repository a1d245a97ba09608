// Package sanitize applies the basic string hygiene required at every
// boundary where text enters the system: user ids, user messages, and tool
// arguments emitted by the model.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wayfarerlabs/tripmind/agent/contract"
)

const (
	maxUserIDLength  = 100
	maxStringLength  = 5000
	maxMessageLength = 5000
)

var userIDPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// UserID keeps only alphanumerics, underscore and hyphen, capped at 100
// characters. An id that sanitizes to nothing is a validation error.
func UserID(raw string) (string, error) {
	id := strings.TrimSpace(userIDPattern.ReplaceAllString(raw, ""))
	if id == "" {
		return "", fmt.Errorf("%w: user id is empty after sanitization", contract.ErrValidation)
	}
	if len(id) > maxUserIDLength {
		id = id[:maxUserIDLength]
	}
	return id, nil
}

// Message strips control characters (keeping newline and tab), trims, and
// caps the length. An empty result is rejected.
func Message(raw string) (string, error) {
	msg := strings.TrimSpace(stripControl(raw))
	if msg == "" {
		return "", fmt.Errorf("%w: message is empty", contract.ErrValidation)
	}
	return truncate(msg, maxMessageLength), nil
}

// Arguments sanitizes string-valued tool arguments in place semantics:
// strings and lists of strings are cleaned, everything else (numbers,
// booleans) passes through untouched.
func Arguments(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for param, value := range args {
		switch v := value.(type) {
		case string:
			clean, err := cleanString(v)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter %q cannot be empty", contract.ErrValidation, param)
			}
			out[param] = clean
		case []any:
			items := make([]any, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					items = append(items, item)
					continue
				}
				clean, err := cleanString(s)
				if err != nil {
					return nil, fmt.Errorf("%w: parameter %q has an empty list item", contract.ErrValidation, param)
				}
				items = append(items, clean)
			}
			out[param] = items
		default:
			out[param] = value
		}
	}
	return out, nil
}

func cleanString(raw string) (string, error) {
	s := strings.TrimSpace(stripControl(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty string", contract.ErrValidation)
	}
	return truncate(s, maxStringLength), nil
}

// truncate caps s at max bytes without splitting a multibyte rune, so the
// stored value stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func stripControl(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, raw)
}
