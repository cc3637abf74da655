package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bankdesk/internal/config"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source delivers freshly generated users and banks.
type Source interface {
	RandomUsers(ctx context.Context, n int) ([]User, error)
	RandomBanks(ctx context.Context, n int) ([]Bank, error)
}

// Store keeps session state between requests.
// Load returns nil without an error if the session has no state yet.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Forget(ctx context.Context, sessionID string) error
}

// Engine is the state controller for all sessions. Operations on the same
// session are applied one at a time, network fetches happen outside the lock.
type Engine struct {
	cfg    *config.DataSourceConfig
	source Source
	store  Store
	log    *log.Logger

	locks   *keyedMutex
	seeding singleflight.Group

	now func() time.Time
}

// New creates a new Engine instance.
func New(cfg *config.Config, source Source, store Store) (*Engine, error) {
	if cfg == nil || cfg.DataSource == nil {
		return nil, fmt.Errorf("data source config is required")
	}
	if source == nil {
		return nil, fmt.Errorf("data source is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	return &Engine{
		cfg:    cfg.DataSource,
		source: source,
		store:  store,
		log:    log.Default().WithPrefix("engine"),
		locks:  newKeyedMutex(),
		now:    time.Now,
	}, nil
}

// update loads the session state, applies fn and saves the result, all while
// holding the session lock. The state is saved even if fn fails, so notices
// recorded by fn survive.
func (e *Engine) update(ctx context.Context, sessionID string, fn func(s *State) error) (*State, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	s, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	if s == nil {
		s = NewState()
	}

	fnErr := fn(s)

	if err := e.store.Save(ctx, sessionID, s); err != nil {
		return nil, fmt.Errorf("failed to save session state: %w", err)
	}
	return s, fnErr
}

func (e *Engine) exists(ctx context.Context, sessionID string) (bool, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	s, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to load session state: %w", err)
	}
	return s != nil, nil
}

// fetchFailed records err as a notice and wraps it for the caller.
func (e *Engine) fetchFailed(s *State, what string, err error) error {
	e.log.Error("failed to fetch random data", "what", what, "error", err)
	s.SetNotice(NoticeError, fmt.Sprintf("Could not load %s: %v", what, err), e.now())
	return fmt.Errorf("%w: %s: %w", ErrFetch, what, err)
}

// Initialize seeds the session with fresh users and banks, replacing whatever
// it held. On failure the previous collections are kept.
func (e *Engine) Initialize(ctx context.Context, sessionID string) error {
	var (
		users []User
		banks []Bank
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = e.source.RandomUsers(gctx, e.cfg.SeedCount)
		return err
	})
	g.Go(func() error {
		var err error
		banks, err = e.source.RandomBanks(gctx, e.cfg.SeedCount)
		return err
	})
	fetchErr := g.Wait()

	_, err := e.update(ctx, sessionID, func(s *State) error {
		if fetchErr != nil {
			return e.fetchFailed(s, "users and banks", fetchErr)
		}
		s.ReplaceAll(users, banks, e.now())
		s.CancelEdit()
		return nil
	})
	if err == nil {
		e.log.Debug("session seeded", "session", sessionID, "users", len(users), "banks", len(banks))
	}
	return err
}

// ensureSeeded initializes sessions that have no state yet. Concurrent first
// requests of one session share a single seed.
func (e *Engine) ensureSeeded(ctx context.Context, sessionID string) error {
	_, err, _ := e.seeding.Do(sessionID, func() (any, error) {
		ok, err := e.exists(ctx, sessionID)
		if err != nil || ok {
			return nil, err
		}
		return nil, e.Initialize(ctx, sessionID)
	})
	if errors.Is(err, ErrFetch) {
		// the failure is stored as a notice on the session
		return nil
	}
	return err
}

// mutate is update for operations that expect a seeded session.
func (e *Engine) mutate(ctx context.Context, sessionID string, fn func(s *State) error) (*State, error) {
	if err := e.ensureSeeded(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.update(ctx, sessionID, fn)
}

// warn records a rejected request as a warning notice and returns err.
func (e *Engine) warn(s *State, err error) error {
	if err != nil {
		e.log.Debug("request rejected", "error", err)
		s.SetNotice(NoticeWarning, err.Error(), e.now())
	}
	return err
}

// EndSession drops all state of the session.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	if err := e.store.Forget(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to forget session state: %w", err)
	}
	return nil
}

// Reset seeds the session again.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.Initialize(ctx, sessionID)
}

// Reject records a rejected request as a warning notice on the session and
// returns err, or the store error if the notice could not be saved.
func (e *Engine) Reject(ctx context.Context, sessionID string, err error) error {
	if _, uerr := e.mutate(ctx, sessionID, func(s *State) error {
		_ = e.warn(s, err)
		return nil
	}); uerr != nil {
		return uerr
	}
	return err
}

func (e *Engine) checkCount(ctx context.Context, sessionID string, count int) error {
	if count >= 1 && count <= e.cfg.MaxAddCount {
		return nil
	}
	return e.Reject(ctx, sessionID,
		fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidCount, count, e.cfg.MaxAddCount))
}

// AddUsers fetches count users and appends them to the latest session state.
func (e *Engine) AddUsers(ctx context.Context, sessionID string, count int) error {
	if err := e.ensureSeeded(ctx, sessionID); err != nil {
		return err
	}
	if err := e.checkCount(ctx, sessionID, count); err != nil {
		return err
	}
	users, fetchErr := e.source.RandomUsers(ctx, count)
	_, err := e.update(ctx, sessionID, func(s *State) error {
		if fetchErr != nil {
			return e.fetchFailed(s, "users", fetchErr)
		}
		s.AppendUsers(users)
		return nil
	})
	return err
}

// AddBanks fetches count banks and appends them to the latest session state.
func (e *Engine) AddBanks(ctx context.Context, sessionID string, count int) error {
	if err := e.ensureSeeded(ctx, sessionID); err != nil {
		return err
	}
	if err := e.checkCount(ctx, sessionID, count); err != nil {
		return err
	}
	banks, fetchErr := e.source.RandomBanks(ctx, count)
	_, err := e.update(ctx, sessionID, func(s *State) error {
		if fetchErr != nil {
			return e.fetchFailed(s, "banks", fetchErr)
		}
		s.AppendBanks(banks)
		return nil
	})
	return err
}

// BeginEdit stages a copy of a user or bank for editing.
func (e *Engine) BeginEdit(ctx context.Context, sessionID string, kind Kind, id ID) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		return e.warn(s, s.BeginEdit(kind, id))
	})
	return err
}

// UpdateEditField changes one field of the staged entity.
func (e *Engine) UpdateEditField(ctx context.Context, sessionID, field, value string) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		return e.warn(s, s.UpdateEditField(field, value))
	})
	return err
}

// SaveEdit applies a set of field changes to the staged entity and commits it.
// Nothing is committed if any field is rejected.
func (e *Engine) SaveEdit(ctx context.Context, sessionID string, fields map[string]string) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		if !s.Editing.Active() {
			return nil
		}
		draft := s.Editing
		for field, value := range fields {
			if err := s.UpdateEditField(field, value); err != nil {
				s.Editing = draft
				return e.warn(s, err)
			}
		}
		if err := s.CommitEdit(); err != nil {
			s.Editing = draft
			return e.warn(s, err)
		}
		return nil
	})
	return err
}

// CommitEdit writes the staged entity back into its collection.
func (e *Engine) CommitEdit(ctx context.Context, sessionID string) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		return e.warn(s, s.CommitEdit())
	})
	return err
}

// CancelEdit discards the staged entity.
func (e *Engine) CancelEdit(ctx context.Context, sessionID string) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		s.CancelEdit()
		return nil
	})
	return err
}

// DeleteUser removes a user. Deleting an unknown user is not an error.
func (e *Engine) DeleteUser(ctx context.Context, sessionID string, id ID) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		s.DeleteUser(id)
		return nil
	})
	return err
}

// DeleteBank removes a bank unless users still reference it, in which case the
// bank stays and the session gets a notice.
func (e *Engine) DeleteBank(ctx context.Context, sessionID string, id ID) error {
	_, err := e.mutate(ctx, sessionID, func(s *State) error {
		err := s.DeleteBank(id)
		if errors.Is(err, ErrBankInUse) {
			e.log.Debug("bank delete rejected", "session", sessionID, "bank", id, "error", err)
			s.SetNotice(NoticeWarning, bankInUseMessage, e.now())
		}
		return err
	})
	return err
}

// View returns the session state for rendering, seeding new sessions first.
// The pending notice is handed out once: it is set on the returned state and
// cleared in the stored one.
func (e *Engine) View(ctx context.Context, sessionID string) (*State, error) {
	if err := e.ensureSeeded(ctx, sessionID); err != nil {
		return nil, err
	}
	var notice *Notice
	s, err := e.update(ctx, sessionID, func(s *State) error {
		notice = s.TakeNotice()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Notice = notice
	return s, nil
}
