// Package session manages per-session conversation histories over an opaque
// key-value backend.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kartavya/ragchat/internal/fault"
	"github.com/kartavya/ragchat/internal/model/chat"
)

const keyPrefix = "session:"

// Store persists ordered turn sequences keyed by session id. It is
// constructed explicitly and injected; it owns no hidden global state.
type Store struct {
	kv  KV
	ttl time.Duration

	// Append is read-modify-write against the KV, so appends to the same
	// session are serialized through a per-id mutex. Appends to different
	// sessions stay concurrent.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore wraps kv. A ttl of 0 keeps sessions until cleared.
func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl, locks: make(map[string]*sync.Mutex)}
}

// Create provisions a fresh session with an empty history and returns its id.
// Ids come from uuid and are never recycled, so a cleared id stays dead.
func (s *Store) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.kv.Set(ctx, keyPrefix+id, "[]", s.ttl); err != nil {
		return "", fault.New(fault.StoreUnavailable, "create", err)
	}
	return id, nil
}

// Append adds a user/bot turn pair to an existing session. It never
// auto-creates: appending to an unknown id is a caller bug and fails fast.
func (s *Store) Append(ctx context.Context, id, userText, botText string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	turns, err := s.load(ctx, id, "append")
	if err != nil {
		return err
	}

	turns = append(turns,
		chat.Turn{Role: chat.RoleUser, Text: userText},
		chat.Turn{Role: chat.RoleBot, Text: botText},
	)

	encoded, err := json.Marshal(turns)
	if err != nil {
		return fault.New(fault.StoreUnavailable, "append", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+id, string(encoded), s.ttl); err != nil {
		return fault.New(fault.StoreUnavailable, "append", err)
	}
	return nil
}

// Fetch returns the session history in conversation order.
func (s *Store) Fetch(ctx context.Context, id string) ([]chat.Turn, error) {
	return s.load(ctx, id, "fetch")
}

// Clear deletes the session and reports whether it existed.
func (s *Store) Clear(ctx context.Context, id string) (bool, error) {
	existed, err := s.kv.Delete(ctx, keyPrefix+id)
	if err != nil {
		return false, fault.New(fault.StoreUnavailable, "clear", err)
	}

	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
	return existed, nil
}

func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) load(ctx context.Context, id, stage string) ([]chat.Turn, error) {
	raw, ok, err := s.kv.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, fault.New(fault.StoreUnavailable, stage, err)
	}
	if !ok {
		return nil, fault.New(fault.SessionNotFound, stage, fmt.Errorf("session %s", id))
	}

	var turns []chat.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fault.New(fault.StoreUnavailable, stage, err)
	}
	return turns, nil
}
