package types

import (
	"context"
	"errors"
	"math"
)

// EntityStore provides access to addressable entities and to the membership
// of named collections. Every call is independently awaited; implementations
// keep no state between calls.
type EntityStore interface {
	// Get returns the item stored under id. When local is false the store
	// may resolve identifiers it does not hold from their origin.
	// Returns (nil, nil) when the entity does not exist.
	Get(ctx context.Context, id string, local bool) (*Item, error)

	// Put creates or replaces the item stored under id.
	Put(ctx context.Context, id string, item *Item) error

	// ReadCollection returns up to limit members of the collection id,
	// starting after cursor. An empty cursor starts at the beginning.
	ReadCollection(ctx context.Context, id string, limit uint32, cursor string) (CollectionPage, error)

	// FindCollection reports whether item is a member of collection id.
	FindCollection(ctx context.Context, id, item string) (bool, error)

	// InsertCollection adds item to collection id. Inserting an existing
	// member is not an error.
	InsertCollection(ctx context.Context, id, item string) error

	// RemoveCollection removes item from collection id. Removing an absent
	// member is not an error.
	RemoveCollection(ctx context.Context, id, item string) error
}

// QueueStore is the ordered queue of pending deliveries.
type QueueStore interface {
	// AddItem appends an event to the end of the queue.
	AddItem(ctx context.Context, event, data string) error

	// NextItem removes and returns the oldest queued item.
	// Returns (nil, nil) when the queue is empty.
	NextItem(ctx context.Context) (*QueueItem, error)

	// MarkSuccess records that item was delivered.
	MarkSuccess(ctx context.Context, item *QueueItem) error

	// MarkFailure records a failed attempt and requeues item until it
	// has used up MaxDeliveryAttempts.
	MarkFailure(ctx context.Context, item *QueueItem) error
}

// Querier is implemented by backends that expose their native query
// language. It bypasses the entity and collection abstraction.
type Querier interface {
	Query(ctx context.Context, lines []string) ([][]string, error)
}

// CollectionPage is one page of collection members.
type CollectionPage struct {
	Items  []string
	Before string // cursor preceding the first item, empty at the start
	After  string // cursor following the last item, empty when exhausted
}

// QueueItem is one pending delivery.
type QueueItem struct {
	ID       string
	Event    string
	Data     string
	Attempts int
}

// MaxDeliveryAttempts bounds how often a queue item is retried.
const MaxDeliveryAttempts = 5

// UnboundedPage is the page size used to read a whole collection.
const UnboundedPage = uint32(math.MaxInt32)

// Store errors.
var (
	ErrConnectionFailed   = errors.New("connection failed")
	ErrNotFound           = errors.New("entity not found")
	ErrParseFailed        = errors.New("parse failed")
	ErrStoreFailed        = errors.New("store failed")
	ErrMissingKeyMaterial = errors.New("missing key material")
	ErrQueryUnsupported   = errors.New("backend does not support native queries")
)

// Lease errors.
var (
	ErrLeaseReleased = errors.New("lease has been released")
	ErrLeaseBusy     = errors.New("lease is in use by another caller")
)
