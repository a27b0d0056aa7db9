package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeViews struct {
	entities EntityStore
	queue    QueueStore
}

func (f fakeViews) Get() (EntityStore, QueueStore) { return f.entities, f.queue }

func TestNewContext(t *testing.T) {
	server := ServerConfig{BaseURI: "https://kroeg.test", Name: "Kroeg", Description: "test", InstanceID: 7}
	c := NewContext(fakeViews{}, CLIUser("alice"), server)

	assert.Equal(t, "https://kroeg.test", c.ServerBase)
	assert.Equal(t, "Kroeg", c.Name)
	assert.Equal(t, "test", c.Description)
	assert.Equal(t, int64(7), c.InstanceID)
	assert.Equal(t, "alice", c.User.Subject)
}

func TestContextRoundTrip(t *testing.T) {
	c := &Context{ServerBase: "https://kroeg.test"}
	ctx := WithContext(context.Background(), c)
	assert.Same(t, c, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestCLIUser(t *testing.T) {
	anon := CLIUser("")
	assert.Equal(t, SubjectAnonymous, anon.Subject)
	assert.Equal(t, IssuerCLI, anon.Issuer)
	assert.True(t, anon.IsCLI())
	assert.True(t, anon.IsAnonymous())

	named := CLIUser("https://kroeg.test/alice")
	assert.False(t, named.IsAnonymous())
	assert.Empty(t, named.Audience)

	assert.False(t, AnonymousUser().IsCLI())
}
