// Package retrieve wraps an entity store so that identifiers the server
// does not hold can be fetched from their origin on demand.
package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// maxDocumentSize bounds remote documents.
const maxDocumentSize = 4 << 20

// acceptHeader asks peers for their ActivityPub representation.
const acceptHeader = `application/activity+json, application/ld+json; profile="https://www.w3.org/ns/activitystreams"`

// Store is an EntityStore that resolves remote identifiers through HTTP
// and caches them in the wrapped store. Collection operations pass through.
type Store struct {
	types.EntityStore
	base   string
	client *http.Client
	proc   jsonld.Processor
	logger *slog.Logger
}

// New wraps inner. Identifiers under base are never fetched.
func New(inner types.EntityStore, base string, client *http.Client, proc jsonld.Processor) *Store {
	if client == nil {
		client = http.DefaultClient
	}
	return &Store{
		EntityStore: inner,
		base:        base,
		client:      client,
		proc:        proc,
		logger:      slog.Default().With("component", "retrieve"),
	}
}

// IsLocal reports whether id belongs to this server: same scheme and host
// as the base, with a path at or below the base path.
func (s *Store) IsLocal(id string) bool {
	if s.base == "" {
		return false
	}
	base, err := url.Parse(s.base)
	if err != nil {
		return false
	}
	u, err := url.Parse(id)
	if err != nil {
		return false
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return false
	}
	root := strings.TrimSuffix(base.Path, "/")
	return root == "" || u.Path == root || strings.HasPrefix(u.Path, root+"/")
}

// Get returns the stored item, or when local is false and the identifier
// is remote and unknown, fetches, stores, and returns it. A remote 404 or
// 410 is reported as (nil, nil).
func (s *Store) Get(ctx context.Context, id string, local bool) (*types.Item, error) {
	item, err := s.EntityStore.Get(ctx, id, true)
	if err != nil || item != nil || local || s.IsLocal(id) {
		return item, err
	}
	if !strings.HasPrefix(id, "https://") && !strings.HasPrefix(id, "http://") {
		return nil, nil
	}

	doc, err := s.fetch(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	expanded, err := s.proc.Expand(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w: %w", id, types.ErrParseFailed, err)
	}
	item, err = types.ParseItem(id, expanded)
	if err != nil {
		return nil, err
	}
	if err := s.EntityStore.Put(ctx, id, item); err != nil {
		return nil, err
	}
	s.logger.Debug("retrieved remote entity", "id", id)
	return item, nil
}

func (s *Store) fetch(ctx context.Context, id string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", id, err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %d", id, resp.StatusCode)
	}

	var doc any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", id, types.ErrParseFailed, err)
	}
	return doc, nil
}
