// Package analytics accumulates per-tool invocation counts and token
// volumes in a JSON file of its own, lock-guarded independently from the
// memory database so the two never block each other.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wayfarerlabs/tripmind/pkg/lockedfile"
)

const counterFile = "tool_analytics.json"

// Stats is the cumulative record for one tool name. All fields are
// monotonically non-decreasing for the lifetime of the counter file,
// except through Reset.
type Stats struct {
	Calls     int `json:"calls"`
	TokensIn  int `json:"tokens_in"`
	TokensOut int `json:"tokens_out"`
}

type Counter struct {
	path    string
	timeout time.Duration
}

func NewCounter(dataDir string, lockTimeout time.Duration) *Counter {
	return &Counter{
		path:    filepath.Join(dataDir, counterFile),
		timeout: lockTimeout,
	}
}

// Path returns the location of the backing file.
func (c *Counter) Path() string { return c.path }

// decode mirrors the database policy: a corrupt counter file degrades to
// empty stats with a warning rather than failing the operation.
func (c *Counter) decode(current []byte) map[string]Stats {
	stats := map[string]Stats{}
	if err := json.Unmarshal(current, &stats); err != nil {
		log.Warn().Err(err).Str("path", c.path).
			Msg("counter payload is corrupt, recovering with empty stats")
		return map[string]Stats{}
	}
	return stats
}

func encode(stats map[string]Stats) ([]byte, error) {
	payload, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode counter: %w", err)
	}
	return payload, nil
}

// Increment adds the deltas to the named tool's entry, creating a zeroed
// entry first if absent. The whole read-add-write runs as one critical
// section; concurrent increments never lose updates.
func (c *Counter) Increment(ctx context.Context, tool string, calls, tokensIn, tokensOut int) error {
	return lockedfile.WithLock(ctx, c.path, c.timeout, func(current []byte) ([]byte, error) {
		stats := c.decode(current)
		entry := stats[tool]
		entry.Calls += calls
		entry.TokensIn += tokensIn
		entry.TokensOut += tokensOut
		stats[tool] = entry
		return encode(stats)
	})
}

// ToolStats returns the entry for one tool, zeroed if it was never seen.
func (c *Counter) ToolStats(ctx context.Context, tool string) (Stats, error) {
	var out Stats
	err := lockedfile.WithLock(ctx, c.path, c.timeout, func(current []byte) ([]byte, error) {
		out = c.decode(current)[tool]
		return nil, nil
	})
	return out, err
}

// AllStats returns every tool's entry.
func (c *Counter) AllStats(ctx context.Context) (map[string]Stats, error) {
	var out map[string]Stats
	err := lockedfile.WithLock(ctx, c.path, c.timeout, func(current []byte) ([]byte, error) {
		out = c.decode(current)
		return nil, nil
	})
	return out, err
}

// Reset zeroes the entry for one tool. Unknown tools are a no-op.
func (c *Counter) Reset(ctx context.Context, tool string) error {
	return lockedfile.WithLock(ctx, c.path, c.timeout, func(current []byte) ([]byte, error) {
		stats := c.decode(current)
		if _, ok := stats[tool]; !ok {
			return nil, nil
		}
		stats[tool] = Stats{}
		return encode(stats)
	})
}
