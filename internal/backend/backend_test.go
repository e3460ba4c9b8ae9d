package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/adapters"
	"tripdesk/internal/config"
	"tripdesk/internal/core"
	"tripdesk/internal/memory"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", CacheTTL: time.Minute}
	got, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, Config{Type: SQLite, SQLiteDBPath: "x.db", CacheTTL: time.Minute}, got)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Config{Type: Memory}.Validate())
	assert.Error(t, Config{Type: SQLite}.Validate())
	assert.Error(t, Config{Type: "postgres"}.Validate())
}

func TestOpen_Memory(t *testing.T) {
	res, err := Open(context.Background(), Config{Type: Memory}, nil)
	require.NoError(t, err)
	defer res.Cleanup()

	assert.IsType(t, &memory.Store{}, res.Store)
	assert.Nil(t, res.Pinger)
}

func TestOpen_SQLiteWithCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tripdesk.db")

	res, err := Open(ctx, Config{Type: SQLite, SQLiteDBPath: path, CacheTTL: time.Minute}, nil)
	require.NoError(t, err)

	cached, ok := res.Store.(*adapters.CachedStore)
	require.True(t, ok, "store should be wrapped in the snapshot cache")
	require.NotNil(t, res.Pinger)
	assert.NoError(t, res.Pinger.Ping(ctx))

	require.NoError(t, cached.SaveExpense(ctx, core.Expense{ID: "e1", Title: "Porter", Category: core.CategoryGuideFee, Amount: 1, Date: "2026-05-01"}))
	list, err := res.Store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, res.Cleanup())

	// Data survives a reopen without the cache.
	res, err = Open(ctx, Config{Type: SQLite, SQLiteDBPath: path}, nil)
	require.NoError(t, err)
	defer res.Cleanup()
	list, err = res.Store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpen_Invalid(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: SQLite}, nil)
	assert.Error(t, err)
}
