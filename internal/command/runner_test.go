package command

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kroeg/internal/activitypub"
	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/internal/lease"
	"github.com/mesh-intelligence/kroeg/internal/lease/leasetest"
	"github.com/mesh-intelligence/kroeg/internal/logging"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

const base = "https://kroeg.test"

type harness struct {
	runner *Runner
	lease  *lease.Lease
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	proc, err := jsonld.New(nil)
	require.NoError(t, err)
	h := &harness{lease: leasetest.Open(t), out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.runner = &Runner{
		Server: types.ServerConfig{BaseURI: base, InstanceID: 1},
		Proc:   proc,
		Actors: activitypub.CreateActorHandler{KeyBits: 1024, Logger: logging.NewNop()},
		In:     strings.NewReader(""),
		Out:    h.out,
		Err:    h.errOut,
		Logger: logging.NewNop(),
	}
	return h
}

func (h *harness) run(t *testing.T, cmd Command, stdin string) string {
	t.Helper()
	h.out.Reset()
	h.runner.In = strings.NewReader(stdin)
	require.NoError(t, h.runner.Run(context.Background(), h.lease, cmd))
	return h.out.String()
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("expand")
	require.NoError(t, err)
	assert.Equal(t, FormatExpand, f)

	f, err = ParseFormat("compact")
	require.NoError(t, err)
	assert.Equal(t, FormatCompact, f)

	_, err = ParseFormat("turtle")
	assert.Error(t, err)

	var v Format
	require.NoError(t, v.Set("expand"))
	assert.Equal(t, "expand", v.String())
	assert.Equal(t, "format", v.Type())
	assert.Error(t, v.Set("nope"))
}

func TestSetThenGet(t *testing.T) {
	h := newHarness(t)
	doc := `{"@id":"https://x/note1","@type":["https://www.w3.org/ns/activitystreams#Note"]}`

	out := h.run(t, SetEntity{ID: "https://x/note1", Format: FormatExpand}, doc)
	assert.Contains(t, out, `"@id":"https://x/note1"`)
	assert.True(t, strings.HasSuffix(out, "\n"))

	out = h.run(t, GetEntity{ID: "https://x/note1", Local: true, Format: FormatCompact}, "")
	assert.Contains(t, out, `"type":"Note"`)
	assert.Contains(t, out, `"id":"https://x/note1"`)

	out = h.run(t, GetEntity{ID: "https://x/missing", Local: true}, "")
	assert.Empty(t, out)
}

func TestGetSetGetRoundTrip(t *testing.T) {
	h := newHarness(t)
	id := base + "/n1"
	h.run(t, SetEntity{ID: id, Format: FormatExpand},
		`{"@context":"https://www.w3.org/ns/activitystreams","id":"`+id+`","type":"Note","content":"hello","to":"`+base+`/bob"}`)

	first := h.run(t, GetEntity{ID: id, Local: true, Format: FormatCompact}, "")
	require.NotEmpty(t, first)
	h.run(t, SetEntity{ID: id, Format: FormatCompact}, first)
	second := h.run(t, GetEntity{ID: id, Local: true, Format: FormatCompact}, "")

	assert.JSONEq(t, first, second)
	assert.Contains(t, second, `"content":"hello"`)
}

func TestSet_ParseFailure(t *testing.T) {
	h := newHarness(t)
	h.runner.In = strings.NewReader("{broken")
	err := h.runner.Run(context.Background(), h.lease, SetEntity{ID: "https://x/n"})
	assert.ErrorIs(t, err, types.ErrParseFailed)
	assert.Contains(t, err.Error(), "parse")

	h.runner.In = strings.NewReader(`{"@id":"https://x/other","@type":["https://www.w3.org/ns/activitystreams#Note"]}`)
	err = h.runner.Run(context.Background(), h.lease, SetEntity{ID: "https://x/n"})
	assert.ErrorIs(t, err, types.ErrParseFailed)
}

func TestCollectionMembership(t *testing.T) {
	h := newHarness(t)
	coll := base + "/alice/outbox"

	h.run(t, AddToCollection{ID: coll, Item: base + "/n1"}, "")
	h.run(t, AddToCollection{ID: coll, Item: base + "/n2"}, "")
	assert.Equal(t, base+"/n1\n"+base+"/n2\n", h.run(t, ListCollection{ID: coll}, ""))

	h.run(t, RemoveFromCollection{ID: coll, Item: base + "/n1"}, "")
	h.run(t, RemoveFromCollection{ID: coll, Item: base + "/n1"}, "")
	assert.Equal(t, base+"/n2\n", h.run(t, ListCollection{ID: coll}, ""))
}

func TestCreateActorAndToken(t *testing.T) {
	h := newHarness(t)
	alice := base + "/alice"

	out := h.run(t, CreateActor{ID: alice, Username: "alice", DisplayName: "Alice"}, "")
	assert.Equal(t, "done\n", out)

	entities, _ := h.lease.Get()
	actor, err := entities.Get(context.Background(), alice, true)
	require.NoError(t, err)
	require.NotNil(t, actor)
	assert.Equal(t, "alice", actor.String(types.ASPreferredUsername))
	assert.Equal(t, "Alice", actor.String(types.ASName))
	assert.Contains(t, actor.Meta, types.KroegInstance)

	token := strings.TrimSpace(h.run(t, IssueToken{ActorID: alice}, ""))
	assert.Len(t, strings.Split(token, "."), 3)
	assert.Empty(t, h.errOut.String())
}

func TestIssueToken_NoKeyIsDiagnosed(t *testing.T) {
	h := newHarness(t)
	alice := base + "/alice"
	h.run(t, SetEntity{ID: alice}, `{"@id":"`+alice+`","@type":["https://www.w3.org/ns/activitystreams#Person"]}`)

	out := h.run(t, IssueToken{ActorID: alice}, "")
	assert.Empty(t, out)
	assert.Contains(t, h.errOut.String(), "Cannot create authentication")
}

func TestSimulateRequest(t *testing.T) {
	h := newHarness(t)
	h.run(t, CreateActor{ID: base + "/alice"}, "")

	out := h.run(t, SimulateRequest{
		Method: "post",
		URL:    base + "/alice/outbox",
		User:   base + "/alice",
		Format: FormatCompact,
	}, `{"@context":"https://www.w3.org/ns/activitystreams","type":"Note","content":"hi"}`)
	head, body, found := strings.Cut(out, "\n\n")
	require.True(t, found)
	lines := strings.Split(head, "\n")
	assert.Equal(t, "HTTP/1.0 201 Created", lines[0])
	assert.Contains(t, lines, "Content-Type: application/activity+json")
	assert.Contains(t, body, `"content":"hi"`)

	out = h.run(t, SimulateRequest{Method: "GET", URL: base + "/alice", Format: FormatExpand}, "")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.0 200 OK\n"))
	assert.Contains(t, out, `"@id":"`+base+`/alice"`)
	assert.Contains(t, out, types.ASPerson)

	out = h.run(t, SimulateRequest{Method: "GET", URL: base + "/missing"}, "")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.0 404 Not Found\n"))
}

func TestRunQuery(t *testing.T) {
	h := newHarness(t)
	assert.Empty(t, h.run(t, RunQuery{Lines: []string{"SELECT id FROM entities"}}, ""))

	h.run(t, SetEntity{ID: "https://x/n"}, `{"@id":"https://x/n","@type":["https://www.w3.org/ns/activitystreams#Note"]}`)
	out := h.run(t, RunQuery{Lines: []string{"SELECT id, 'x'", "FROM entities"}}, "")
	assert.Equal(t, "https://x/n\tx\n", out)
}

func TestRun_ReleasedLease(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.lease.Close())
	err := h.runner.Run(context.Background(), h.lease, ListCollection{ID: base + "/c"})
	assert.ErrorIs(t, err, types.ErrLeaseReleased)
}
