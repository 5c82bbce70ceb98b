package cache

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "nested", "http_cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	m := openTestManager(t)

	body := []byte(strings.Repeat(`{"lap_number":1,"lap_duration":91.743}`, 50))
	require.NoError(t, m.Put(ctx, "https://api.openf1.org/v1/laps?session_key=1", body))

	got, found, err := m.Get(ctx, "https://api.openf1.org/v1/laps?session_key=1", time.Hour)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, body, got)

	_, found, err = m.Get(ctx, "https://api.openf1.org/v1/laps?session_key=2", time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	m := openTestManager(t)

	require.NoError(t, m.Put(ctx, "u", []byte("old")))
	require.NoError(t, m.Put(ctx, "u", []byte("new")))

	got, found, err := m.Get(ctx, "u", 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new", string(got))
}

func TestGetHonoursTTL(t *testing.T) {
	ctx := context.Background()
	m := openTestManager(t)

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	require.NoError(t, m.Put(ctx, "u", []byte("body")))

	m.now = func() time.Time { return start.Add(2 * time.Hour) }

	_, found, err := m.Get(ctx, "u", time.Hour)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = m.Get(ctx, "u", 3*time.Hour)
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = m.Get(ctx, "u", 0)
	require.NoError(t, err)
	assert.True(t, found)
}
