package sqlstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// postgresConfig returns the live server configured for tests, skipping
// the test when none is set.
func postgresConfig(t *testing.T) types.DatabaseConfig {
	t.Helper()
	server := os.Getenv("KROEG_TEST_POSTGRES_SERVER")
	if server == "" || testing.Short() {
		t.Skip("KROEG_TEST_POSTGRES_SERVER not set")
	}
	database := os.Getenv("KROEG_TEST_POSTGRES_DATABASE")
	if database == "" {
		database = "kroeg_test"
	}
	return types.DatabaseConfig{
		Backend:  types.BackendPostgreSQL,
		Server:   server,
		Username: os.Getenv("KROEG_TEST_POSTGRES_USERNAME"),
		Password: os.Getenv("KROEG_TEST_POSTGRES_PASSWORD"),
		Database: database,
	}
}

func TestPostgres_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, postgresConfig(t))
	require.NoError(t, err)
	defer c.Close()

	prefix := "https://pg.test/" + uuid.NewString()
	entities, queue := c.EntityStore(), c.QueueStore()

	item := types.NewItem(prefix + "/note")
	item.Main["@type"] = []any{types.ASNote}
	item.StampInstance(2)
	require.NoError(t, entities.Put(ctx, item.ID, item))
	require.NoError(t, entities.Put(ctx, item.ID, item), "put is an upsert")

	got, err := entities.Get(ctx, item.ID, true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HasType(types.ASNote))

	coll := prefix + "/outbox"
	require.NoError(t, entities.InsertCollection(ctx, coll, item.ID))
	require.NoError(t, entities.InsertCollection(ctx, coll, item.ID))
	page, err := entities.ReadCollection(ctx, coll, types.UnboundedPage, "")
	require.NoError(t, err)
	assert.Equal(t, []string{item.ID}, page.Items)
	require.NoError(t, entities.RemoveCollection(ctx, coll, item.ID))
	found, err := entities.FindCollection(ctx, coll, item.ID)
	require.NoError(t, err)
	assert.False(t, found)

	for {
		stale, err := queue.NextItem(ctx)
		require.NoError(t, err)
		if stale == nil {
			break
		}
	}
	require.NoError(t, queue.AddItem(ctx, "deliver", prefix))
	next, err := queue.NextItem(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, prefix, next.Data)

	rows, err := c.Query(ctx, []string{"SELECT id FROM entities", "WHERE id = '" + item.ID + "'"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{item.ID}}, rows)
}
