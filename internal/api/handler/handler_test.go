package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("user 1: %w", engine.ErrNotFound), http.StatusNotFound},
		{&engine.BankInUseError{BankID: "1", Users: 2}, http.StatusConflict},
		{engine.ErrInvalidCount, http.StatusBadRequest},
		{engine.ErrUnknownField, http.StatusBadRequest},
		{engine.ErrUnknownKind, http.StatusBadRequest},
		{engine.ErrUnknownBank, http.StatusBadRequest},
		{engine.ErrNotEditing, http.StatusBadRequest},
		{fmt.Errorf("%w: users: %w", engine.ErrFetch, errors.New("timeout")), http.StatusBadGateway},
		{errors.New("redis down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusFor(tt.err), "error: %v", tt.err)
	}
}

func TestParseCount(t *testing.T) {
	n, err := parseCount("", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = parseCount(" 12 ", 3)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = parseCount("-1", 3)
	assert.ErrorIs(t, err, engine.ErrInvalidCount)

	_, err = parseCount("many", 3)
	assert.ErrorIs(t, err, engine.ErrInvalidCount)

	_, err = parseCount("99999999999999999999", 3)
	assert.ErrorIs(t, err, engine.ErrInvalidCount)
}

func TestNew_AddCount(t *testing.T) {
	assert.Equal(t, 1, New(nil, nil).addCount)
	assert.Equal(t, 4, New(nil, &config.Config{DataSource: &config.DataSourceConfig{AddCount: 4}}).addCount)
	assert.False(t, New(nil, &config.Config{}).avatars.Enabled())
}
