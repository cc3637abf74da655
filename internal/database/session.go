package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bankdesk/internal/engine"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ engine.Store = (*Client)(nil)

// SessionState is the stored state of one browser session.
type SessionState struct {
	ID        string `gorm:"primaryKey"`
	Data      []byte `gorm:"not null"`
	ExpiresAt int64  `gorm:"index;not null"` // unix milliseconds
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

// Load returns the state of the session, or nil if it has none or it expired.
func (c *Client) Load(ctx context.Context, sessionID string) (*engine.State, error) {
	var row SessionState
	if err := c.db.WithContext(ctx).First(&row, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Error("failed to load session", "error", err)
		return nil, err
	}
	if row.ExpiresAt <= c.now().UnixMilli() {
		return nil, nil
	}

	var state engine.State
	if err := json.Unmarshal(row.Data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &state, nil
}

// Save stores the state of the session and restarts its expiration.
func (c *Client) Save(ctx context.Context, sessionID string, state *engine.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	row := SessionState{
		ID:        sessionID,
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl).UnixMilli(),
	}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		log.Error("failed to save session", "error", err)
		return err
	}
	return nil
}

// Forget drops the state of the session.
func (c *Client) Forget(ctx context.Context, sessionID string) error {
	if err := c.db.WithContext(ctx).Delete(&SessionState{}, "id = ?", sessionID).Error; err != nil {
		log.Error("failed to delete session", "error", err)
		return err
	}
	return nil
}

// DeleteExpiredSessions removes every expired session and returns how many
// were removed.
func (c *Client) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result := c.db.WithContext(ctx).Where("expires_at <= ?", c.now().UnixMilli()).Delete(&SessionState{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountSessions returns the number of stored sessions, expired ones included.
func (c *Client) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&SessionState{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
