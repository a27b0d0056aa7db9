package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/mesh-intelligence/kroeg/internal/activitypub"
	"github.com/mesh-intelligence/kroeg/internal/auth"
	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/internal/lease"
	"github.com/mesh-intelligence/kroeg/internal/retrieve"
	"github.com/mesh-intelligence/kroeg/internal/server"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Runner executes commands. Output goes to Out, diagnostics to Err, and
// documents are read from In.
type Runner struct {
	Server types.ServerConfig
	Proc   jsonld.Processor
	Client *http.Client
	Actors activitypub.MessageHandler

	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger
}

// Run executes cmd against l. Only RunQuery touches the connection
// directly; everything else goes through a Context over l's views.
func (r *Runner) Run(ctx context.Context, l *lease.Lease, cmd Command) error {
	user := types.CLIUser("")
	if sim, ok := cmd.(SimulateRequest); ok {
		user = types.CLIUser(sim.User)
	}
	c := types.NewContext(l, user, r.Server)

	switch cmd := cmd.(type) {
	case RunQuery:
		return r.runQuery(ctx, l, cmd)
	case GetEntity:
		return r.getEntity(ctx, c, cmd)
	case SetEntity:
		return r.setEntity(ctx, c, cmd)
	case ListCollection:
		return r.listCollection(ctx, c, cmd)
	case AddToCollection:
		if err := c.EntityStore.InsertCollection(ctx, cmd.ID, cmd.Item); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		return nil
	case RemoveFromCollection:
		if err := c.EntityStore.RemoveCollection(ctx, cmd.ID, cmd.Item); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		return nil
	case SimulateRequest:
		return r.simulate(ctx, c, cmd)
	case CreateActor:
		return r.createActor(ctx, c, cmd)
	case IssueToken:
		return r.issueToken(ctx, c, cmd)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) getEntity(ctx context.Context, c *types.Context, cmd GetEntity) error {
	store := retrieve.New(c.EntityStore, c.ServerBase, r.Client, r.Proc)
	item, err := store.Get(ctx, cmd.ID, cmd.Local)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	if item == nil {
		r.logger().Debug("entity not found", "id", cmd.ID)
		return nil
	}
	return r.printEntity(ctx, item.ToJSON(), cmd.Format)
}

func (r *Runner) setEntity(ctx context.Context, c *types.Context, cmd SetEntity) error {
	var doc any
	if err := json.NewDecoder(r.In).Decode(&doc); err != nil {
		return fmt.Errorf("parse: %w: %w", types.ErrParseFailed, err)
	}
	expanded, err := r.Proc.Expand(ctx, doc)
	if err != nil {
		return fmt.Errorf("parse: %w: %w", types.ErrParseFailed, err)
	}
	item, err := types.ParseItem(cmd.ID, expanded)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := c.EntityStore.Put(ctx, cmd.ID, item); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return r.printEntity(ctx, item.ToJSON(), cmd.Format)
}

func (r *Runner) listCollection(ctx context.Context, c *types.Context, cmd ListCollection) error {
	page, err := c.EntityStore.ReadCollection(ctx, cmd.ID, types.UnboundedPage, "")
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	for _, item := range page.Items {
		fmt.Fprintln(r.Out, item)
	}
	return nil
}

func (r *Runner) printEntity(ctx context.Context, doc map[string]any, format Format) error {
	var out any = doc
	if format == FormatCompact {
		compacted, err := r.Proc.Compact(ctx, doc)
		if err != nil {
			return fmt.Errorf("compact: %w", err)
		}
		out = compacted
	}
	return r.printJSON(out)
}

func (r *Runner) printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintf(r.Out, "%s\n", data)
	return err
}

func (r *Runner) simulate(ctx context.Context, c *types.Context, cmd SimulateRequest) error {
	method := strings.ToUpper(cmd.Method)
	var body io.Reader
	if method == http.MethodPost || method == http.MethodPut {
		data, err := io.ReadAll(r.In)
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, cmd.URL, body)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", server.ContentType)
	}

	routes := (&server.Server{Config: r.Server, Proc: r.Proc, Logger: r.Logger}).Routes()
	resp := server.Simulate(ctx, c, routes, req)
	defer resp.Body.Close()

	fmt.Fprintf(r.Out, "HTTP/1.0 %s\n", resp.Status)
	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			fmt.Fprintf(r.Out, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintln(r.Out)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if cmd.Format == FormatCompact {
		_, err = r.Out.Write(data)
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		_, err = r.Out.Write(data)
		return err
	}
	expanded, err := r.Proc.Expand(ctx, doc)
	if err != nil {
		return fmt.Errorf("expand: %w", err)
	}
	return r.printJSON(expanded)
}

func (r *Runner) createActor(ctx context.Context, c *types.Context, cmd CreateActor) error {
	doc := map[string]any{
		"@id":   cmd.ID,
		"@type": []any{types.ASPerson},
	}
	if cmd.Username != "" {
		doc[types.ASPreferredUsername] = []any{types.Literal(cmd.Username)}
	}
	if cmd.DisplayName != "" {
		doc[types.ASName] = []any{types.Literal(cmd.DisplayName)}
	}

	items, err := types.Untangle([]any{doc})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	for id, item := range items {
		item.StampInstance(c.InstanceID)
		if err := c.EntityStore.Put(ctx, id, item); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	actors := r.Actors
	if actors == nil {
		actors = activitypub.CreateActorHandler{Logger: r.Logger}
	}
	if err := actors.Handle(ctx, c, cmd.ID); err != nil {
		return fmt.Errorf("create actor: %w", err)
	}
	fmt.Fprintln(r.Out, "done")
	return nil
}

func (r *Runner) issueToken(ctx context.Context, c *types.Context, cmd IssueToken) error {
	token, err := auth.IssueToken(ctx, c.EntityStore, cmd.ActorID)
	if errors.Is(err, types.ErrMissingKeyMaterial) {
		color.New(color.FgYellow).Fprintf(r.Err, "Cannot create authentication for user: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	fmt.Fprintln(r.Out, token)
	return nil
}

func (r *Runner) runQuery(ctx context.Context, l *lease.Lease, q RunQuery) error {
	rows, err := l.Query(ctx, q.Lines)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	for _, row := range rows {
		fmt.Fprintln(r.Out, strings.Join(row, "\t"))
	}
	return nil
}
