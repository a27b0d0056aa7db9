package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

func TestEntityStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := openTestConn(t).EntityStore()

	item, err := store.Get(ctx, "https://x/note1", true)
	require.NoError(t, err)
	assert.Nil(t, item, "missing entity is not an error")

	note := types.NewItem("https://x/note1")
	note.Main["@type"] = []any{types.ASNote}
	note.Push(types.NsAS+"content", types.Literal("hello"))
	note.StampInstance(1)
	require.NoError(t, store.Put(ctx, note.ID, note))

	got, err := store.Get(ctx, "https://x/note1", true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HasType(types.ASNote))
	assert.Equal(t, "hello", got.String(types.NsAS+"content"))
	assert.Contains(t, got.Meta, types.KroegInstance)

	note.Main[types.NsAS+"content"] = []any{types.Literal("edited")}
	require.NoError(t, store.Put(ctx, note.ID, note))
	got, err = store.Get(ctx, "https://x/note1", true)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.String(types.NsAS+"content"))
}

func TestEntityStore_Collections(t *testing.T) {
	ctx := context.Background()
	store := openTestConn(t).EntityStore()
	const outbox = "https://x/alice/outbox"

	for _, id := range []string{"https://x/a", "https://x/b", "https://x/c"} {
		require.NoError(t, store.InsertCollection(ctx, outbox, id))
	}
	require.NoError(t, store.InsertCollection(ctx, outbox, "https://x/a"), "duplicate insert is a no-op")

	page, err := store.ReadCollection(ctx, outbox, types.UnboundedPage, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a", "https://x/b", "https://x/c"}, page.Items)
	assert.Empty(t, page.After)

	found, err := store.FindCollection(ctx, outbox, "https://x/b")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, store.RemoveCollection(ctx, outbox, "https://x/b"))
	require.NoError(t, store.RemoveCollection(ctx, outbox, "https://x/b"), "removing an absent member is not an error")

	page, err = store.ReadCollection(ctx, outbox, types.UnboundedPage, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a", "https://x/c"}, page.Items)
}

func TestEntityStore_ReadCollectionPages(t *testing.T) {
	ctx := context.Background()
	store := openTestConn(t).EntityStore()
	const coll = "https://x/coll"

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, store.InsertCollection(ctx, coll, "https://x/"+id))
	}

	first, err := store.ReadCollection(ctx, coll, 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1", "https://x/2"}, first.Items)
	require.NotEmpty(t, first.After)

	second, err := store.ReadCollection(ctx, coll, 2, first.After)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/3"}, second.Items)
	assert.Equal(t, first.After, second.Before)
	assert.Empty(t, second.After)
}
