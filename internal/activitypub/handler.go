// Package activitypub holds the server-side handlers that mutate entities
// on behalf of an authenticated context.
package activitypub

import (
	"context"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// MessageHandler processes one entity under a request context.
type MessageHandler interface {
	Handle(ctx context.Context, c *types.Context, id string) error
}

// HandlerFunc adapts a function to MessageHandler.
type HandlerFunc func(ctx context.Context, c *types.Context, id string) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, c *types.Context, id string) error {
	return f(ctx, c, id)
}
