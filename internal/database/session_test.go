package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, ttl time.Duration) *Client {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "data", "bankdesk.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleState() *engine.State {
	s := engine.NewState()
	s.ReplaceAll(
		[]engine.User{{ID: "1", FirstName: "Ada", Email: "ada@example.com"}},
		[]engine.Bank{{ID: "10", BankName: "ABN AMRO"}},
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	)
	return s
}

func TestSession_LoadMissing(t *testing.T) {
	c := newTestClient(t, time.Hour)

	state, err := c.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestSession_SaveLoadOverwrite(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, time.Hour)

	s := sampleState()
	require.NoError(t, s.BeginEdit(engine.KindUser, "1"))
	require.NoError(t, c.Save(ctx, "sid", s))

	loaded, err := c.Load(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.Users, loaded.Users)
	assert.Equal(t, s.Banks, loaded.Banks)
	assert.Equal(t, engine.KindUser, loaded.Editing.Kind())

	s.DeleteUser("1")
	s.CancelEdit()
	require.NoError(t, c.Save(ctx, "sid", s))

	loaded, err = c.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, loaded.Users)
	assert.False(t, loaded.Editing.Active())

	count, err := c.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSession_Forget(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, time.Hour)

	require.NoError(t, c.Save(ctx, "sid", sampleState()))
	require.NoError(t, c.Forget(ctx, "sid"))
	require.NoError(t, c.Forget(ctx, "sid"))

	state, err := c.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestSession_ExpiryAndPrune(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, time.Hour)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Save(ctx, "old", sampleState()))
	now = now.Add(30 * time.Minute)
	require.NoError(t, c.Save(ctx, "fresh", sampleState()))
	now = now.Add(45 * time.Minute)

	old, err := c.Load(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, old, "expired session is not returned")

	fresh, err := c.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, fresh)

	removed, err := c.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err := c.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
