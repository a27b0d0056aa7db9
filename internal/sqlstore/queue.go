package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// QueueStore implements types.QueueStore on a Conn.
type QueueStore struct {
	c *Conn
}

// newID generates a UUID v7 string.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// AddItem appends an event to the queue.
func (s *QueueStore) AddItem(ctx context.Context, event, data string) error {
	return s.insert(ctx, newID(), event, data, 0)
}

func (s *QueueStore) insert(ctx context.Context, id, event, data string, attempts int) error {
	_, err := s.c.exec(ctx,
		"INSERT INTO queue_items (id, event, data, attempts, created_at) VALUES (?, ?, ?, ?, ?)",
		id, event, data, attempts, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return storeErr("add queue item", err)
	}
	return nil
}

// NextItem pops the oldest item. The delete and the read are one
// statement, so two sessions never receive the same item.
func (s *QueueStore) NextItem(ctx context.Context) (*types.QueueItem, error) {
	var item types.QueueItem
	err := s.c.queryRow(ctx,
		`DELETE FROM queue_items WHERE seq = (SELECT seq FROM queue_items ORDER BY seq LIMIT 1)
		RETURNING id, event, data, attempts`).Scan(&item.ID, &item.Event, &item.Data, &item.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("next queue item", err)
	}
	return &item, nil
}

// MarkSuccess is a no-op: items leave the queue when they are taken.
func (s *QueueStore) MarkSuccess(ctx context.Context, item *types.QueueItem) error {
	return nil
}

// MarkFailure requeues item at the end of the queue, or drops it once it
// has been attempted MaxDeliveryAttempts times.
func (s *QueueStore) MarkFailure(ctx context.Context, item *types.QueueItem) error {
	attempts := item.Attempts + 1
	if attempts >= types.MaxDeliveryAttempts {
		s.c.logger.Warn("dropping queue item", "id", item.ID, "event", item.Event, "attempts", attempts)
		return nil
	}
	return s.insert(ctx, item.ID, item.Event, item.Data, attempts)
}
