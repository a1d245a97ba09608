// Package store persists per-user memories and travel preferences in a
// single JSON file shared by independent processes. Every operation is a
// fresh load-mutate-save cycle held inside one cross-process critical
// section; there is no in-process cache.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/pkg/lockedfile"
)

const databaseFile = "memories.json"

var (
	ErrUserNotFound = fmt.Errorf("user %w", contract.ErrNotFound)
	ErrKeyNotFound  = fmt.Errorf("key %w", contract.ErrNotFound)
)

// Config is decoded from the TRIPMIND_STORE_* environment.
type Config struct {
	DataDir     string        `split_words:"true" default:"database"`
	LockTimeout time.Duration `split_words:"true" default:"10s"`
}

// Store is a handle to the database file. It holds no state beyond the
// path; cheap to copy around, safe for concurrent use.
type Store struct {
	path    string
	timeout time.Duration
	now     func() time.Time
}

func New(cfg Config) *Store {
	return &Store{
		path:    filepath.Join(cfg.DataDir, databaseFile),
		timeout: cfg.LockTimeout,
		now:     time.Now,
	}
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) isoNow() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// decode is deliberately lenient: a corrupt payload degrades to an empty
// database instead of failing the operation. The decode error is surfaced
// as a warning so corruption does not pass silently.
func (s *Store) decode(current []byte) Database {
	db := Database{}
	if err := json.Unmarshal(current, &db); err != nil {
		log.Warn().Err(err).Str("path", s.path).
			Msg("database payload is corrupt, recovering with empty state")
		return Database{}
	}
	db.normalize()
	return db
}

func encode(db Database) ([]byte, error) {
	payload, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode database: %w", err)
	}
	return payload, nil
}

// view runs fn on a decoded snapshot without writing back.
func (s *Store) view(ctx context.Context, fn func(db Database) error) error {
	return lockedfile.WithLock(ctx, s.path, s.timeout, func(current []byte) ([]byte, error) {
		return nil, fn(s.decode(current))
	})
}

// update runs fn inside the critical section and persists the full mapping
// afterwards. Holding the lock across the whole load-mutate-save span is
// what keeps two concurrent writers from losing updates.
func (s *Store) update(ctx context.Context, fn func(db Database) error) error {
	return lockedfile.WithLock(ctx, s.path, s.timeout, func(current []byte) ([]byte, error) {
		db := s.decode(current)
		if err := fn(db); err != nil {
			return nil, err
		}
		return encode(db)
	})
}

// Load returns the full database.
func (s *Store) Load(ctx context.Context) (Database, error) {
	var out Database
	err := s.view(ctx, func(db Database) error {
		out = db
		return nil
	})
	return out, err
}

// Save persists the complete mapping, replacing whatever is on disk.
func (s *Store) Save(ctx context.Context, db Database) error {
	return lockedfile.WithLock(ctx, s.path, s.timeout, func([]byte) ([]byte, error) {
		return encode(db)
	})
}

// GetOrCreate returns the record for userID, creating and persisting an
// empty one if absent. Creation races are serialized by the file lock.
func (s *Store) GetOrCreate(ctx context.Context, userID string) (*UserRecord, error) {
	var out *UserRecord
	err := lockedfile.WithLock(ctx, s.path, s.timeout, func(current []byte) ([]byte, error) {
		db := s.decode(current)
		if rec, ok := db[userID]; ok {
			out = rec
			return nil, nil
		}
		out = db.ensure(userID)
		return encode(db)
	})
	return out, err
}

// StoreMemory upserts one memory. An existing key keeps its created_at;
// updated_at always advances.
func (s *Store) StoreMemory(ctx context.Context, userID, key, value string) (Memory, error) {
	var out Memory
	err := s.update(ctx, func(db Database) error {
		rec := db.ensure(userID)
		now := s.isoNow()
		created := now
		if prev, ok := rec.Memories[key]; ok {
			created = prev.CreatedAt
		}
		m := &Memory{Key: key, Value: value, CreatedAt: created, UpdatedAt: now}
		rec.Memories[key] = m
		out = *m
		return nil
	})
	return out, err
}

// RetrieveMemory returns one memory of the user.
func (s *Store) RetrieveMemory(ctx context.Context, userID, key string) (Memory, error) {
	var out Memory
	err := s.view(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrUserNotFound
		}
		m, ok := rec.Memories[key]
		if !ok {
			return ErrKeyNotFound
		}
		out = *m
		return nil
	})
	return out, err
}

// RetrieveMemories returns the user's full memory collection.
func (s *Store) RetrieveMemories(ctx context.Context, userID string) (map[string]Memory, error) {
	out := map[string]Memory{}
	err := s.view(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrUserNotFound
		}
		for k, m := range rec.Memories {
			out[k] = *m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMemory mutates the value of an existing memory; ErrKeyNotFound if
// the key (or user) does not exist.
func (s *Store) UpdateMemory(ctx context.Context, userID, key, value string) (Memory, error) {
	var out Memory
	err := s.update(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrKeyNotFound
		}
		m, ok := rec.Memories[key]
		if !ok {
			return ErrKeyNotFound
		}
		m.Value = value
		m.UpdatedAt = s.isoNow()
		out = *m
		return nil
	})
	return out, err
}

// DeleteMemory removes one memory; ErrKeyNotFound if absent.
func (s *Store) DeleteMemory(ctx context.Context, userID, key string) error {
	return s.update(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrKeyNotFound
		}
		if _, ok := rec.Memories[key]; !ok {
			return ErrKeyNotFound
		}
		delete(rec.Memories, key)
		return nil
	})
}

// StoreTravelPreference replaces the named preference wholesale. Unlike the
// memory upsert, a re-store is destructive: both timestamps reset to now.
func (s *Store) StoreTravelPreference(ctx context.Context, userID, key string, fields PreferenceFields) (TravelPreference, error) {
	var out TravelPreference
	err := s.update(ctx, func(db Database) error {
		rec := db.ensure(userID)
		now := s.isoNow()
		p := &TravelPreference{
			Key:         key,
			Value:       fields.Value,
			Values:      fields.Values,
			MinValue:    fields.MinValue,
			MaxValue:    fields.MaxValue,
			Description: fields.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		rec.TravelPreferences[key] = p
		out = *p
		return nil
	})
	return out, err
}

// RetrieveTravelPreference returns one preference of the user.
func (s *Store) RetrieveTravelPreference(ctx context.Context, userID, key string) (TravelPreference, error) {
	var out TravelPreference
	err := s.view(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrUserNotFound
		}
		p, ok := rec.TravelPreferences[key]
		if !ok {
			return ErrKeyNotFound
		}
		out = *p
		return nil
	})
	return out, err
}

// RetrieveTravelPreferences returns the user's full preference collection.
// A user with no record at all yields ErrUserNotFound so callers can
// distinguish "collection absent" from a plain empty collection.
func (s *Store) RetrieveTravelPreferences(ctx context.Context, userID string) (map[string]TravelPreference, error) {
	out := map[string]TravelPreference{}
	err := s.view(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrUserNotFound
		}
		for k, p := range rec.TravelPreferences {
			out[k] = *p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTravelPreference merges the provided fields into an existing
// preference: nil fields stay untouched, updated_at refreshes, created_at
// never changes.
func (s *Store) UpdateTravelPreference(ctx context.Context, userID, key string, fields PreferenceFields) (TravelPreference, error) {
	var out TravelPreference
	err := s.update(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrKeyNotFound
		}
		p, ok := rec.TravelPreferences[key]
		if !ok {
			return ErrKeyNotFound
		}
		if fields.Value != nil {
			p.Value = fields.Value
		}
		if fields.Values != nil {
			p.Values = fields.Values
		}
		if fields.MinValue != nil {
			p.MinValue = fields.MinValue
		}
		if fields.MaxValue != nil {
			p.MaxValue = fields.MaxValue
		}
		if fields.Description != nil {
			p.Description = fields.Description
		}
		p.UpdatedAt = s.isoNow()
		out = *p
		return nil
	})
	return out, err
}

// DeleteTravelPreference removes one preference; ErrKeyNotFound if absent.
func (s *Store) DeleteTravelPreference(ctx context.Context, userID, key string) error {
	return s.update(ctx, func(db Database) error {
		rec, ok := db[userID]
		if !ok {
			return ErrKeyNotFound
		}
		if _, ok := rec.TravelPreferences[key]; !ok {
			return ErrKeyNotFound
		}
		delete(rec.TravelPreferences, key)
		return nil
	})
}

// ListUsers reports per-user collection sizes, sorted by user id.
func (s *Store) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var out []UserSummary
	err := s.view(ctx, func(db Database) error {
		for id, rec := range db {
			out = append(out, UserSummary{
				UserID:          id,
				MemoryCount:     len(rec.Memories),
				PreferenceCount: len(rec.TravelPreferences),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
