package types

import "context"

// StoreViews yields the entity and queue views of one leased connection.
type StoreViews interface {
	Get() (EntityStore, QueueStore)
}

// Context is the execution environment of one command or one request.
// It borrows the store views of a single lease and must not outlive the
// command that created it.
type Context struct {
	User        User
	ServerBase  string
	Name        string
	Description string
	InstanceID  int64
	EntityStore EntityStore
	QueueStore  QueueStore
}

// NewContext assembles a Context from the views of a lease, a principal,
// and the static server identity. It never fails.
func NewContext(views StoreViews, user User, server ServerConfig) *Context {
	entities, queue := views.Get()
	return &Context{
		User:        user,
		ServerBase:  server.BaseURI,
		Name:        server.Name,
		Description: server.Description,
		InstanceID:  server.InstanceID,
		EntityStore: entities,
		QueueStore:  queue,
	}
}

// contextKey is the key type for storing a Context in context.Context.
type contextKey struct{}

// WithContext returns a copy of ctx carrying c.
func WithContext(ctx context.Context, c *Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Context stored in ctx, or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}
