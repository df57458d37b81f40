package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite store for testing.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestDBRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, found, err := db.Get(ctx, "songbook/state")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, db.Set(ctx, "songbook/state", []byte(`{"projects":[]}`)))

	value, found, err := db.Get(ctx, "songbook/state")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte(`{"projects":[]}`), value)
}

func TestDBOverwrite(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "k", []byte("first")))
	require.NoError(t, db.Set(ctx, "k", []byte("second")))

	value, found, err := db.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("second"), value)
}

func TestMemoryRoundTrip(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	_, found, err := mem.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, mem.Set(ctx, "k", []byte("v")))
	value, found, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), value)
}
