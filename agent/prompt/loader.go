package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/system.txt
var systemRaw string

const userIDSlot = "{{user_id}}"

// System returns the default system prompt for one user session.
func System(userID string) string {
	return strings.ReplaceAll(strings.TrimSpace(systemRaw), userIDSlot, userID)
}
