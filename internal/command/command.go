// Package command defines the closed set of operator commands and the
// runner that executes them against one lease.
package command

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Format selects how entities and response bodies are printed.
type Format int

// Output formats.
const (
	FormatCompact Format = iota
	FormatExpand
)

// ParseFormat parses "compact" or "expand".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "compact":
		return FormatCompact, nil
	case "expand":
		return FormatExpand, nil
	}
	return 0, fmt.Errorf("unknown format %q (want expand or compact)", s)
}

func (f Format) String() string {
	if f == FormatExpand {
		return "expand"
	}
	return "compact"
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

var _ pflag.Value = (*Format)(nil)

// Command is one of the operations below. The set is closed.
type Command interface {
	command()
}

// GetEntity prints one entity. Remote identifiers are fetched unless
// Local is set.
type GetEntity struct {
	ID     string
	Local  bool
	Format Format
}

// SetEntity stores the document read from input under ID.
type SetEntity struct {
	ID     string
	Format Format
}

// ListCollection prints the members of a collection.
type ListCollection struct {
	ID string
}

// AddToCollection inserts Item into collection ID.
type AddToCollection struct {
	ID   string
	Item string
}

// RemoveFromCollection removes Item from collection ID.
type RemoveFromCollection struct {
	ID   string
	Item string
}

// SimulateRequest runs an HTTP request through the request handlers
// without a socket. User names the principal; empty is anonymous.
type SimulateRequest struct {
	Method string
	URL    string
	User   string
	Format Format
}

// CreateActor stores a new actor and attaches its key material and boxes.
type CreateActor struct {
	ID          string
	Username    string
	DisplayName string
}

// IssueToken prints a bearer token for an actor.
type IssueToken struct {
	ActorID string
}

// RunQuery passes raw query lines to the backend.
type RunQuery struct {
	Lines []string
}

func (GetEntity) command()            {}
func (SetEntity) command()            {}
func (ListCollection) command()       {}
func (AddToCollection) command()      {}
func (RemoveFromCollection) command() {}
func (SimulateRequest) command()      {}
func (CreateActor) command()          {}
func (IssueToken) command()           {}
func (RunQuery) command()             {}
