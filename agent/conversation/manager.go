package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wayfarerlabs/tripmind/agent/contract"
)

// DefaultIdleTimeout is how long a session survives without traffic before
// eviction.
const DefaultIdleTimeout = 30 * time.Minute

// Factory builds a fresh Conversation for a sanitized user id.
type Factory func(userID string) *Conversation

// session serializes access to one user's Conversation. Turns for different
// users run in parallel; the manager's own mutex covers only the map.
type session struct {
	mu       sync.Mutex
	conv     *Conversation
	lastSeen time.Time
}

// Manager owns every live session. A user's transcript is never touched by
// two requests at once, but a blocking turn for one user never delays
// another user's requests. Idle sessions are evicted lazily on the next
// access.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*session
	factory     Factory
	idleTimeout time.Duration
	now         func() time.Time
}

// ManagerOption adjusts a Manager at construction time.
type ManagerOption func(*Manager)

// WithIdleTimeout overrides the eviction window. Zero or negative disables
// eviction.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTimeout = d }
}

func NewManager(factory Factory, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:    make(map[string]*session),
		factory:     factory,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire returns the user's session, creating it when create is set. The
// map mutex is released before the caller touches the session itself.
func (m *Manager) acquire(userID string, create bool) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictIdle()
	s, ok := m.sessions[userID]
	if !ok {
		if !create {
			return nil, false
		}
		s = &session{conv: m.factory(userID)}
		m.sessions[userID] = s
		log.Debug().Str("user_id", userID).Msg("session created")
	}
	s.lastSeen = m.now()
	return s, true
}

// Chat routes one message to the user's session, creating it on first
// contact.
func (m *Manager) Chat(ctx context.Context, userID, message string) (string, error) {
	s, _ := m.acquire(userID, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Chat(ctx, message)
}

// Clear drops the user's transcript. Clearing an unknown user is a no-op.
func (m *Manager) Clear(userID string) {
	s, ok := m.acquire(userID, false)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Clear()
}

// History returns the user's retained transcript, empty for unknown users.
func (m *Manager) History(userID string) []contract.Message {
	s, ok := m.acquire(userID, false)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.History()
}

// ActiveSessions reports how many sessions are currently held.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictIdle is called with m.mu held.
func (m *Manager) evictIdle() {
	if m.idleTimeout <= 0 {
		return
	}
	cutoff := m.now().Add(-m.idleTimeout)
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			log.Debug().Str("user_id", id).Msg("idle session evicted")
		}
	}
}
