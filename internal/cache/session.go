package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/engine"
)

// SessionStatePrefix is the key prefix of stored session state.
const SessionStatePrefix = "session-state-"

// SessionStore keeps the state of every session until it expires.
type SessionStore struct {
	states *PrefixedCache[*engine.State]
	ttl    time.Duration
}

var _ engine.Store = (*SessionStore)(nil)

// NewSessionStore creates a session store backed by the configured cache.
// Stored states expire after ttl.
func NewSessionStore(cfg *config.CacheConfig, ttl time.Duration) *SessionStore {
	if cfg == nil {
		cfg = &config.CacheConfig{Type: config.CacheTypeMemory}
	}
	cleanup := ttl / 4
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &SessionStore{
		states: NewPrefixedCache[*engine.State](
			newCacheInstanceByType(cfg, cleanup),
			cfg.Type,
			SessionStatePrefix,
		),
		ttl: ttl,
	}
}

// Load returns the state of the session, or nil if it has none.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*engine.State, error) {
	state, err := s.states.Get(ctx, sessionID)
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Save stores the state of the session and restarts its expiration.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *engine.State) error {
	return s.states.Set(ctx, sessionID, state, s.ttl)
}

// Forget drops the state of the session.
func (s *SessionStore) Forget(ctx context.Context, sessionID string) error {
	return s.states.Delete(ctx, sessionID)
}
