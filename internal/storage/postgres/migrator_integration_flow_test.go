package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, store.MigrateDown(ctx, 100), "reset")

	state, err := store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Zero(t, state.Version)
	require.Zero(t, state.Applied)
	require.Equal(t, []int64{1, 2}, state.Pending)

	require.NoError(t, store.MigrateUp(ctx, 1))
	state, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, state.Version)
	require.Equal(t, []int64{2}, state.Pending)

	require.NoError(t, store.MigrateUp(ctx, 0))
	require.NoError(t, store.MigrateUp(ctx, 0), "up is idempotent")
	state, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, state.Version)
	require.Equal(t, 2, state.Applied)
	require.Empty(t, state.Pending)

	require.NoError(t, store.MigrateDown(ctx, 0))
	state, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, state.Version)

	require.NoError(t, store.MigrateDown(ctx, 5))
	require.NoError(t, store.MigrateDown(ctx, 1), "down on empty schema is a no-op")

	require.NoError(t, store.MigrateUp(ctx, 0))
}

func TestMigrator_GuardsAndUnsupportedDirection(t *testing.T) {
	var nilStore *Store
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.Error(t, nilStore.MigrateUp(ctx, 0))
	require.Error(t, nilStore.MigrateDown(ctx, 1))
	_, err := nilStore.MigrationStatus(ctx)
	require.Error(t, err)

	store := &Store{db: nil}
	require.ErrorIs(t, store.migrate(ctx, migrationUp, 0), errStoreNotInitialized)
}
