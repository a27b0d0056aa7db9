package types

import (
	"fmt"
	"strings"
)

// Item is one stored entity: an expanded JSON-LD node object plus the
// server-only meta properties that are never rendered to clients.
type Item struct {
	ID   string
	Main map[string]any
	Meta map[string]any
}

// NewItem returns an empty item with the given identifier.
func NewItem(id string) *Item {
	return &Item{
		ID:   id,
		Main: map[string]any{"@id": id},
		Meta: map[string]any{},
	}
}

// ToJSON returns the expanded node object of the item.
func (i *Item) ToJSON() map[string]any {
	out := make(map[string]any, len(i.Main)+1)
	for k, v := range i.Main {
		out[k] = v
	}
	out["@id"] = i.ID
	return out
}

// Types returns the @type values of the item.
func (i *Item) Types() []string {
	return stringList(i.Main["@type"])
}

// HasType reports whether the item carries the given expanded type.
func (i *Item) HasType(typ string) bool {
	for _, t := range i.Types() {
		if t == typ {
			return true
		}
	}
	return false
}

// IDs returns the identifiers referenced by prop.
func (i *Item) IDs(prop string) []string {
	return refs(i.Main[prop])
}

// String returns the first literal value of prop, or "".
func (i *Item) String(prop string) string {
	return firstString(i.Main[prop])
}

// MetaString returns the first literal value of the meta property prop.
func (i *Item) MetaString(prop string) string {
	return firstString(i.Meta[prop])
}

// Push appends a value object or node reference to prop.
func (i *Item) Push(prop string, value any) {
	i.Main[prop] = appendValue(i.Main[prop], value)
}

// PushMeta appends a value object to the meta property prop.
func (i *Item) PushMeta(prop string, value any) {
	if i.Meta == nil {
		i.Meta = map[string]any{}
	}
	i.Meta[prop] = appendValue(i.Meta[prop], value)
}

// StampInstance records which server instance created the item.
func (i *Item) StampInstance(instanceID int64) {
	i.PushMeta(KroegInstance, map[string]any{
		"@value": instanceID,
		"@type":  XSDInteger,
	})
}

// Ref builds a node reference value.
func Ref(id string) map[string]any {
	return map[string]any{"@id": id}
}

// Literal builds a plain value object.
func Literal(v any) map[string]any {
	return map[string]any{"@value": v}
}

// ParseItem finds the node identified by id in an expanded document and
// returns it as an item. Embedded nodes are kept in place.
func ParseItem(id string, expanded []any) (*Item, error) {
	for _, raw := range expanded {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if nodeID, _ := node["@id"].(string); nodeID == id {
			return &Item{ID: id, Main: node, Meta: map[string]any{}}, nil
		}
	}
	if len(expanded) == 1 {
		if node, ok := expanded[0].(map[string]any); ok {
			if _, has := node["@id"]; !has {
				node["@id"] = id
				return &Item{ID: id, Main: node, Meta: map[string]any{}}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no node with @id %q", ErrParseFailed, id)
}

// Untangle splits an expanded document into one item per identified node.
// Embedded node objects that carry an @id and any other property are moved
// into their own item and replaced by a reference. Anonymous embedded nodes
// stay in place.
func Untangle(expanded []any) (map[string]*Item, error) {
	items := make(map[string]*Item)
	for _, raw := range expanded {
		node, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: top-level value is not a node", ErrParseFailed)
		}
		id, _ := node["@id"].(string)
		if id == "" || strings.HasPrefix(id, "_:") {
			return nil, fmt.Errorf("%w: top-level node without @id", ErrParseFailed)
		}
		if err := untangleNode(node, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func untangleNode(node map[string]any, items map[string]*Item) error {
	id, _ := node["@id"].(string)
	for key, value := range node {
		if strings.HasPrefix(key, "@") {
			continue
		}
		list, ok := value.([]any)
		if !ok {
			continue
		}
		for n, v := range list {
			replaced, err := untangleValue(v, items)
			if err != nil {
				return err
			}
			list[n] = replaced
		}
	}
	if prev, ok := items[id]; ok {
		for k, v := range node {
			if _, has := prev.Main[k]; !has {
				prev.Main[k] = v
			}
		}
		return nil
	}
	items[id] = &Item{ID: id, Main: node, Meta: map[string]any{}}
	return nil
}

func untangleValue(v any, items map[string]*Item) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	if _, isValue := obj["@value"]; isValue {
		return v, nil
	}
	if list, isList := obj["@list"].([]any); isList {
		for n, lv := range list {
			replaced, err := untangleValue(lv, items)
			if err != nil {
				return nil, err
			}
			list[n] = replaced
		}
		return obj, nil
	}
	id, _ := obj["@id"].(string)
	if id == "" || strings.HasPrefix(id, "_:") {
		// Anonymous nodes stay embedded; their identified children do not.
		for key, value := range obj {
			if strings.HasPrefix(key, "@") {
				continue
			}
			if list, ok := value.([]any); ok {
				for n, lv := range list {
					replaced, err := untangleValue(lv, items)
					if err != nil {
						return nil, err
					}
					list[n] = replaced
				}
			}
		}
		return obj, nil
	}
	if len(obj) == 1 {
		return obj, nil
	}
	if err := untangleNode(obj, items); err != nil {
		return nil, err
	}
	return Ref(id), nil
}

func appendValue(existing, value any) []any {
	list, _ := existing.([]any)
	return append(list, value)
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

func refs(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, e := range list {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := obj["@id"].(string); ok {
			out = append(out, id)
		}
	}
	return out
}

func firstString(v any) string {
	list, _ := v.([]any)
	for _, e := range list {
		switch t := e.(type) {
		case string:
			return t
		case map[string]any:
			if s, ok := t["@value"].(string); ok {
				return s
			}
		}
	}
	return ""
}
