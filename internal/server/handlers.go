// Package server implements the request pipeline shared by the network
// listener and the command-line request simulator.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/kroeg/internal/deliver"
	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// ContentType is the media type of rendered entities.
const ContentType = "application/activity+json"

// maxBodySize bounds posted documents.
const maxBodySize = 1 << 20

// Errors returned by the write path.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("not permitted")
	ErrNoContext    = errors.New("request has no context")
)

// RequestID returns the entity identifier a request addresses. Absolute
// request URLs, as produced by the simulator, are used as-is; otherwise the
// path is joined to the server base.
func RequestID(c *types.Context, r *http.Request) string {
	u := *r.URL
	u.RawQuery = ""
	u.Fragment = ""
	if u.IsAbs() {
		return u.String()
	}
	return strings.TrimSuffix(c.ServerBase, "/") + u.EscapedPath()
}

// GetHandler renders one stored entity.
type GetHandler struct {
	Proc   jsonld.Processor
	Logger *slog.Logger
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := types.FromContext(ctx)
	if c == nil {
		writeError(w, h.Logger, ErrNoContext)
		return
	}

	id := RequestID(c, r)
	item, err := c.EntityStore.Get(ctx, id, true)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if item == nil {
		writeError(w, h.Logger, types.ErrNotFound)
		return
	}

	doc := item.ToJSON()
	if isCollection(item) {
		page, err := c.EntityStore.ReadCollection(ctx, id, types.UnboundedPage, "")
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		members := make([]any, 0, len(page.Items))
		for _, m := range page.Items {
			members = append(members, types.Ref(m))
		}
		if item.HasType(types.ASOrderedCollection) {
			doc[types.ASOrderedItems] = []any{map[string]any{"@list": members}}
		} else {
			doc[types.ASItems] = members
		}
		doc[types.ASTotalItems] = []any{map[string]any{
			"@value": float64(len(members)),
			"@type":  types.XSDNonNegativeInteger,
		}}
	}
	render(w, r, h.Proc, h.Logger, http.StatusOK, doc)
}

// PostHandler stores a document and appends it to the addressed
// collection, scheduling delivery to its audience.
type PostHandler struct {
	Proc   jsonld.Processor
	Logger *slog.Logger
}

func (h PostHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := types.FromContext(ctx)
	if c == nil {
		writeError(w, h.Logger, ErrNoContext)
		return
	}

	collectionID := RequestID(c, r)
	collection, err := c.EntityStore.Get(ctx, collectionID, true)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if collection == nil {
		writeError(w, h.Logger, types.ErrNotFound)
		return
	}
	if !isCollection(collection) {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := authorize(r, c, collectionID); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var doc any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&doc); err != nil {
		writeError(w, h.Logger, errors.Join(types.ErrParseFailed, err))
		return
	}
	expanded, err := h.Proc.Expand(ctx, doc)
	if err != nil {
		writeError(w, h.Logger, errors.Join(types.ErrParseFailed, err))
		return
	}
	objectID, err := assignIDs(expanded, collectionID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	items, err := types.Untangle(expanded)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if err := checkWrites(r, c, collectionID, items); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	for id, item := range items {
		item.StampInstance(c.InstanceID)
		if err := c.EntityStore.Put(ctx, id, item); err != nil {
			writeError(w, h.Logger, err)
			return
		}
	}
	if err := c.EntityStore.InsertCollection(ctx, collectionID, objectID); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	object := items[objectID]
	for _, recipient := range deliver.Recipients(object) {
		if err := deliver.Enqueue(ctx, c.QueueStore, objectID, recipient); err != nil {
			writeError(w, h.Logger, err)
			return
		}
	}

	w.Header().Set("Location", objectID)
	render(w, r, h.Proc, h.Logger, http.StatusCreated, object.ToJSON())
}

// ContextHandler serves the server JSON-LD context.
func ContextHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/ld+json")
	_ = json.NewEncoder(w).Encode(jsonld.ContextDocument())
}

// authorize admits command-line principals unconditionally. Network
// principals may only post to their own outbox.
func authorize(r *http.Request, c *types.Context, collectionID string) error {
	if c.User.IsCLI() {
		return nil
	}
	if c.User.IsAnonymous() {
		return ErrUnauthorized
	}
	actor, err := c.EntityStore.Get(r.Context(), c.User.Subject, true)
	if err != nil {
		return err
	}
	if actor != nil {
		for _, outbox := range actor.IDs(types.ASOutbox) {
			if outbox == collectionID {
				return nil
			}
		}
	}
	return ErrForbidden
}

// checkWrites limits what a network principal's post may store: every
// item must be new and sit under the collection it was posted to.
func checkWrites(r *http.Request, c *types.Context, collectionID string, items map[string]*types.Item) error {
	if c.User.IsCLI() {
		return nil
	}
	prefix := strings.TrimSuffix(collectionID, "/") + "/"
	for id := range items {
		if !strings.HasPrefix(id, prefix) || len(id) == len(prefix) {
			return fmt.Errorf("%w: %s is outside %s", ErrForbidden, id, collectionID)
		}
		existing, err := c.EntityStore.Get(r.Context(), id, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s already exists", ErrForbidden, id)
		}
	}
	return nil
}

// assignIDs gives top-level anonymous nodes an identifier under the
// collection and returns the identifier of the first node.
func assignIDs(expanded []any, collectionID string) (string, error) {
	if len(expanded) == 0 {
		return "", errors.Join(types.ErrParseFailed, errors.New("empty document"))
	}
	var first string
	for i, raw := range expanded {
		node, ok := raw.(map[string]any)
		if !ok {
			return "", errors.Join(types.ErrParseFailed, errors.New("top-level value is not a node"))
		}
		id, _ := node["@id"].(string)
		if id == "" {
			id = strings.TrimSuffix(collectionID, "/") + "/" + uuid.Must(uuid.NewV7()).String()
			node["@id"] = id
		}
		if i == 0 {
			first = id
		}
	}
	return first, nil
}

func isCollection(item *types.Item) bool {
	return item.HasType(types.ASCollection) || item.HasType(types.ASOrderedCollection)
}

func render(w http.ResponseWriter, r *http.Request, proc jsonld.Processor, logger *slog.Logger, status int, doc map[string]any) {
	compacted, err := proc.Compact(r.Context(), doc)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	body, err := json.Marshal(compacted)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrParseFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrConnectionFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("request failed", "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
