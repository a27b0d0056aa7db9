// Package jsonld expands and compacts JSON-LD documents for the server.
// Compaction always uses the server context: ActivityStreams, the security
// vocabulary, and the kroeg terms.
package jsonld

import (
	"context"
	"fmt"
	"net/http"

	"github.com/piprate/json-gold/ld"
)

// Processor converts documents between their expanded and compacted forms.
type Processor interface {
	Expand(ctx context.Context, doc any) ([]any, error)
	Compact(ctx context.Context, doc any) (map[string]any, error)
}

// ServerContext returns the @context value used for compaction.
func ServerContext() []any {
	return []any{ActivityStreamsContext, SecurityContext, KroegContext}
}

// ContextDocument returns the document served at the server context URL.
func ContextDocument() map[string]any {
	return map[string]any{"@context": ServerContext()}
}

// GoldProcessor implements Processor with piprate/json-gold.
type GoldProcessor struct {
	proc   *ld.JsonLdProcessor
	loader ld.DocumentLoader
}

// New returns a processor whose unknown contexts are fetched with client.
// A nil client keeps the processor offline.
func New(client *http.Client) (*GoldProcessor, error) {
	loader, err := NewLoader(client)
	if err != nil {
		return nil, err
	}
	return &GoldProcessor{proc: ld.NewJsonLdProcessor(), loader: loader}, nil
}

func (p *GoldProcessor) options() *ld.JsonLdOptions {
	opts := ld.NewJsonLdOptions("")
	opts.DocumentLoader = p.loader
	return opts
}

// Expand returns the expanded form of doc. Documents are supplemented
// with the server context first so server terms always resolve.
func (p *GoldProcessor) Expand(ctx context.Context, doc any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expanded, err := p.proc.Expand(Supplement(doc), p.options())
	if err != nil {
		return nil, fmt.Errorf("expanding document: %w", err)
	}
	return expanded, nil
}

// Compact returns doc compacted against the server context.
func (p *GoldProcessor) Compact(ctx context.Context, doc any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	compacted, err := p.proc.Compact(doc, ContextDocument(), p.options())
	if err != nil {
		return nil, fmt.Errorf("compacting document: %w", err)
	}
	return compacted, nil
}

// Supplement appends the security and kroeg contexts to a document that
// declares an ActivityStreams context, since many peers omit them.
// Documents without @context are returned unchanged.
func Supplement(doc any) any {
	obj, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	ctx, has := obj["@context"]
	if !has {
		return doc
	}

	var list []any
	switch c := ctx.(type) {
	case []any:
		list = append(list, c...)
	default:
		list = []any{c}
	}
	for _, extra := range []string{SecurityContext, KroegContext} {
		if !containsString(list, extra) {
			list = append(list, extra)
		}
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	out["@context"] = list
	return out
}

func containsString(list []any, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
