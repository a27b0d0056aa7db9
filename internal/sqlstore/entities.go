package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// EntityStore implements types.EntityStore on a Conn.
type EntityStore struct {
	c *Conn
}

// Get returns the stored item or (nil, nil). The local flag is ignored;
// remote resolution belongs to the retrieving layer.
func (s *EntityStore) Get(ctx context.Context, id string, local bool) (*types.Item, error) {
	var mainJSON, metaJSON string
	err := s.c.queryRow(ctx, "SELECT main, meta FROM entities WHERE id = ?", id).Scan(&mainJSON, &metaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get entity", err)
	}

	item := &types.Item{ID: id}
	if err := json.Unmarshal([]byte(mainJSON), &item.Main); err != nil {
		return nil, fmt.Errorf("decoding entity %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &item.Meta); err != nil {
		return nil, fmt.Errorf("decoding entity meta %s: %w", id, err)
	}
	if item.Meta == nil {
		item.Meta = map[string]any{}
	}
	return item, nil
}

// Put creates or replaces the item stored under id.
func (s *EntityStore) Put(ctx context.Context, id string, item *types.Item) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", types.ErrParseFailed)
	}
	item.ID = id
	mainJSON, err := json.Marshal(item.ToJSON())
	if err != nil {
		return fmt.Errorf("encoding entity %s: %w", id, err)
	}
	meta := item.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding entity meta %s: %w", id, err)
	}

	_, err = s.c.exec(ctx,
		`INSERT INTO entities (id, main, meta, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET main = excluded.main, meta = excluded.meta, updated_at = excluded.updated_at`,
		id, string(mainJSON), string(metaJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return storeErr("put entity", err)
	}
	return nil
}

// ReadCollection returns members in insertion order. The cursor is the
// position of the last member already seen.
func (s *EntityStore) ReadCollection(ctx context.Context, id string, limit uint32, cursor string) (types.CollectionPage, error) {
	var after int64
	if cursor != "" {
		n, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return types.CollectionPage{}, fmt.Errorf("%w: cursor %q", types.ErrParseFailed, cursor)
		}
		after = n
	}

	rows, err := s.c.query(ctx,
		`SELECT object_id, position FROM collection_items
		WHERE collection_id = ? AND position > ? ORDER BY position LIMIT ?`,
		id, after, int64(limit))
	if err != nil {
		return types.CollectionPage{}, storeErr("read collection", err)
	}
	defer rows.Close()

	page := types.CollectionPage{Items: []string{}}
	if cursor != "" {
		page.Before = cursor
	}
	var last int64
	for rows.Next() {
		var object string
		if err := rows.Scan(&object, &last); err != nil {
			return types.CollectionPage{}, storeErr("scan collection", err)
		}
		page.Items = append(page.Items, object)
	}
	if err := rows.Err(); err != nil {
		return types.CollectionPage{}, storeErr("read collection", err)
	}
	if limit > 0 && uint32(len(page.Items)) == limit {
		page.After = strconv.FormatInt(last, 10)
	}
	return page, nil
}

// FindCollection reports whether item is a member of collection id.
func (s *EntityStore) FindCollection(ctx context.Context, id, item string) (bool, error) {
	var one int
	err := s.c.queryRow(ctx,
		"SELECT 1 FROM collection_items WHERE collection_id = ? AND object_id = ?", id, item).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("find in collection", err)
	}
	return true, nil
}

// InsertCollection adds item to collection id.
func (s *EntityStore) InsertCollection(ctx context.Context, id, item string) error {
	_, err := s.c.exec(ctx,
		`INSERT INTO collection_items (collection_id, object_id) VALUES (?, ?)
		ON CONFLICT (collection_id, object_id) DO NOTHING`, id, item)
	if err != nil {
		return storeErr("insert into collection", err)
	}
	return nil
}

// RemoveCollection removes item from collection id.
func (s *EntityStore) RemoveCollection(ctx context.Context, id, item string) error {
	_, err := s.c.exec(ctx,
		"DELETE FROM collection_items WHERE collection_id = ? AND object_id = ?", id, item)
	if err != nil {
		return storeErr("remove from collection", err)
	}
	return nil
}
