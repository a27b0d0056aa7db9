package jsonld

import (
	"bytes"
	"embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// Well-known context URLs served from the embedded copies.
const (
	ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"
	SecurityContext        = "https://w3id.org/security/v1"
	KroegContext           = "https://puckipedia.com/kroeg/ns"
)

//go:embed contexts/*.jsonld
var contextFiles embed.FS

var embeddedContexts = map[string]string{
	ActivityStreamsContext: "contexts/activitystreams.jsonld",
	SecurityContext:        "contexts/security.jsonld",
	KroegContext:           "contexts/kroeg.jsonld",
}

// Loader resolves remote contexts, serving the well-known ones from the
// binary and everything else through the network loader.
type Loader struct {
	cache map[string]*ld.RemoteDocument
	next  ld.DocumentLoader
}

// NewLoader returns a loader that falls back to client for unknown URLs.
// A nil client disables network access.
func NewLoader(client *http.Client) (*Loader, error) {
	l := &Loader{cache: make(map[string]*ld.RemoteDocument)}
	if client != nil {
		l.next = ld.NewDefaultDocumentLoader(client)
	}
	for url, file := range embeddedContexts {
		data, err := contextFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading embedded context %s: %w", file, err)
		}
		doc, err := ld.DocumentFromReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing embedded context %s: %w", file, err)
		}
		l.cache[url] = &ld.RemoteDocument{DocumentURL: url, Document: doc}
	}
	return l, nil
}

// LoadDocument implements ld.DocumentLoader.
func (l *Loader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	key := strings.TrimSuffix(strings.SplitN(u, "#", 2)[0], ".jsonld")
	if doc, ok := l.cache[key]; ok {
		return doc, nil
	}
	if l.next == nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, "network context loading disabled: "+u)
	}
	return l.next.LoadDocument(u)
}
