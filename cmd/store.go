package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bankdesk/internal/cache"
	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/database"
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/jon4hz/bankdesk/internal/scheduler"
)

const pruneSessionsJobID = "prune-sessions"

// newSessionStore creates the configured session store. The returned func
// releases its resources.
func newSessionStore(cfg *config.Config) (engine.Store, func(), error) {
	if cfg.Cache.Type != config.CacheTypeSQLite {
		return cache.NewSessionStore(cfg.Cache, cfg.SessionTTL()), func() {}, nil
	}

	db, err := database.New(cfg.Cache.SQLitePath, cfg.SessionTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session database: %w", err)
	}

	sched, err := scheduler.New()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := sched.AddSingletonJob(
		pruneSessionsJobID,
		"Prune sessions",
		"Removes expired sessions from the database",
		cfg.Cache.PruneInterval,
		func(ctx context.Context) error {
			removed, err := db.DeleteExpiredSessions(ctx)
			if err != nil {
				return err
			}
			if removed > 0 {
				log.Info("pruned expired sessions", "removed", removed)
			}
			return nil
		},
	); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	sched.Start()

	return db, func() {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
		if err := db.Close(); err != nil {
			log.Error("failed to close session database", "error", err)
		}
	}, nil
}
