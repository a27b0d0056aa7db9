package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItem(t *testing.T) {
	t.Run("finds node by id", func(t *testing.T) {
		expanded := []any{
			map[string]any{"@id": "https://x/other"},
			map[string]any{"@id": "https://x/note1", "@type": []any{ASNote}},
		}
		item, err := ParseItem("https://x/note1", expanded)
		require.NoError(t, err)
		assert.Equal(t, "https://x/note1", item.ID)
		assert.True(t, item.HasType(ASNote))
	})

	t.Run("single anonymous node takes the id", func(t *testing.T) {
		expanded := []any{map[string]any{"@type": []any{ASNote}}}
		item, err := ParseItem("https://x/note2", expanded)
		require.NoError(t, err)
		assert.Equal(t, "https://x/note2", item.ToJSON()["@id"])
	})

	t.Run("missing node fails", func(t *testing.T) {
		expanded := []any{map[string]any{"@id": "https://x/a"}, map[string]any{"@id": "https://x/b"}}
		_, err := ParseItem("https://x/c", expanded)
		assert.True(t, errors.Is(err, ErrParseFailed))
	})
}

func TestUntangle(t *testing.T) {
	expanded := []any{
		map[string]any{
			"@id":   "https://x/create",
			"@type": []any{NsAS + "Create"},
			NsAS + "object": []any{
				map[string]any{
					"@id":   "https://x/note",
					"@type": []any{ASNote},
					NsAS + "content": []any{Literal("hi")},
				},
			},
			NsAS + "tag": []any{
				map[string]any{
					NsAS + "name": []any{Literal("#tag")},
				},
			},
			NsAS + "actor": []any{Ref("https://x/alice")},
		},
	}

	items, err := Untangle(expanded)
	require.NoError(t, err)
	require.Len(t, items, 2)

	create := items["https://x/create"]
	require.NotNil(t, create)
	assert.Equal(t, []string{"https://x/note"}, create.IDs(NsAS+"object"))
	assert.Equal(t, []string{"https://x/alice"}, create.IDs(NsAS+"actor"))

	tags, ok := create.Main[NsAS+"tag"].([]any)
	require.True(t, ok)
	assert.Len(t, tags, 1, "anonymous node stays embedded")

	note := items["https://x/note"]
	require.NotNil(t, note)
	assert.Equal(t, "hi", note.String(NsAS+"content"))
}

func TestUntangleRejectsAnonymousTopLevel(t *testing.T) {
	_, err := Untangle([]any{map[string]any{"@type": []any{ASNote}}})
	assert.True(t, errors.Is(err, ErrParseFailed))
}

func TestItemMeta(t *testing.T) {
	item := NewItem("https://x/key")
	item.PushMeta(SecPrivateKeyPem, Literal("PEM"))
	item.StampInstance(3)

	assert.Equal(t, "PEM", item.MetaString(SecPrivateKeyPem))
	instance, ok := item.Meta[KroegInstance].([]any)
	require.True(t, ok)
	require.Len(t, instance, 1)
	assert.Equal(t, int64(3), instance[0].(map[string]any)["@value"])
	assert.NotContains(t, item.ToJSON(), SecPrivateKeyPem)
}
