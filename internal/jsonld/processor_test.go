package jsonld

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOffline(t *testing.T) *GoldProcessor {
	t.Helper()
	p, err := New(nil)
	require.NoError(t, err)
	return p
}

func TestExpand_FullIRIs(t *testing.T) {
	p := newOffline(t)
	doc := map[string]any{
		"@id":   "https://x/note1",
		"@type": []any{"https://www.w3.org/ns/activitystreams#Note"},
	}

	expanded, err := p.Expand(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, expanded, 1)
	node := expanded[0].(map[string]any)
	assert.Equal(t, "https://x/note1", node["@id"])
	assert.Equal(t, []any{"https://www.w3.org/ns/activitystreams#Note"}, node["@type"])
}

func TestExpand_EmbeddedActivityStreamsContext(t *testing.T) {
	p := newOffline(t)
	doc := map[string]any{
		"@context":  ActivityStreamsContext,
		"id":        "https://x/alice",
		"type":      "Person",
		"name":      "Alice",
		"inbox":     "https://x/alice/inbox",
		"publicKey": "https://x/alice#key",
	}

	expanded, err := p.Expand(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, expanded, 1)
	node := expanded[0].(map[string]any)
	assert.Equal(t, []any{"https://www.w3.org/ns/activitystreams#Person"}, node["@type"])
	assert.Equal(t, []any{map[string]any{"@id": "https://x/alice/inbox"}}, node["http://www.w3.org/ns/ldp#inbox"])
	assert.Equal(t, []any{map[string]any{"@id": "https://x/alice#key"}}, node["https://w3id.org/security#publicKey"],
		"security terms resolve through the supplement")
}

func TestExpand_UnknownContextOffline(t *testing.T) {
	p := newOffline(t)
	doc := map[string]any{"@context": "https://unknown.example/ctx", "id": "https://x/a"}
	_, err := p.Expand(context.Background(), doc)
	assert.Error(t, err)
}

func TestCompact(t *testing.T) {
	p := newOffline(t)
	expanded := map[string]any{
		"@id":   "https://x/note1",
		"@type": []any{"https://www.w3.org/ns/activitystreams#Note"},
		"https://www.w3.org/ns/activitystreams#content": []any{map[string]any{"@value": "hello"}},
	}

	compacted, err := p.Compact(context.Background(), expanded)
	require.NoError(t, err)
	assert.Equal(t, "https://x/note1", compacted["id"])
	assert.Equal(t, "Note", compacted["type"])
	assert.Equal(t, "hello", compacted["content"])
	assert.Contains(t, compacted, "@context")
}

func TestCompactExpandRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newOffline(t)
	original := []any{map[string]any{
		"@id":   "https://x/note1",
		"@type": []any{"https://www.w3.org/ns/activitystreams#Note"},
		"https://www.w3.org/ns/activitystreams#to": []any{map[string]any{"@id": "https://x/bob"}},
	}}

	compacted, err := p.Compact(ctx, original)
	require.NoError(t, err)
	again, err := p.Expand(ctx, compacted)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestSupplement(t *testing.T) {
	doc := map[string]any{"@context": ActivityStreamsContext, "id": "https://x/a"}
	out := Supplement(doc).(map[string]any)
	assert.Equal(t, []any{ActivityStreamsContext, SecurityContext, KroegContext}, out["@context"])
	assert.Equal(t, ActivityStreamsContext, doc["@context"], "input is not modified")

	bare := map[string]any{"@id": "https://x/a"}
	assert.Equal(t, bare, Supplement(bare))
}
