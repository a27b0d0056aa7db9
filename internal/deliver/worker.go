package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/internal/lease"
	"github.com/mesh-intelligence/kroeg/internal/retrieve"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// DefaultInterval is how long an idle worker waits before polling again.
const DefaultInterval = time.Second

// Worker delivers queued items. Each running worker owns one lease.
type Worker struct {
	Pool     lease.Connector
	Server   types.ServerConfig
	Client   *http.Client
	Proc     jsonld.Processor
	Interval time.Duration
	Logger   *slog.Logger
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Run leases a connection and polls the queue until ctx is cancelled.
// Store failures are logged and polling resumes after the interval.
func (w *Worker) Run(ctx context.Context) error {
	l, err := w.Pool.Connect(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	c := types.NewContext(l, types.CLIUser("deliver"), w.Server)
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	for {
		worked, err := w.RunOnce(ctx, c)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.logger().Error("delivery worker", "err", err)
		} else if worked {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunOnce takes one item off the queue and delivers it. It reports false
// when the queue was empty. Failed items go back on the queue; store
// failures are also returned.
func (w *Worker) RunOnce(ctx context.Context, c *types.Context) (bool, error) {
	item, err := c.QueueStore.NextItem(ctx)
	if err != nil || item == nil {
		return false, err
	}

	logger := w.logger().With("queue_item", item.ID, "event", item.Event)
	if item.Event != EventDeliver {
		logger.Warn("dropping queue item with unknown event")
		return true, c.QueueStore.MarkSuccess(ctx, item)
	}
	job, err := decodeJob(item)
	if err != nil {
		logger.Warn("dropping malformed queue item", "err", err)
		return true, c.QueueStore.MarkSuccess(ctx, item)
	}

	if err := w.deliver(ctx, c, job); err != nil {
		logger.Info("delivery failed", "object", job.Object, "recipient", job.Recipient, "attempts", item.Attempts+1, "err", err)
		requeue := c.QueueStore.MarkFailure(ctx, item)
		if errors.Is(err, types.ErrStoreFailed) {
			return true, errors.Join(err, requeue)
		}
		return true, requeue
	}
	logger.Debug("delivered", "object", job.Object, "recipient", job.Recipient)
	return true, c.QueueStore.MarkSuccess(ctx, item)
}

func (w *Worker) deliver(ctx context.Context, c *types.Context, job Job) error {
	store := retrieve.New(c.EntityStore, c.ServerBase, w.Client, w.Proc)

	inboxes, err := w.inboxes(ctx, c, store, job.Recipient)
	if err != nil {
		return err
	}
	var body []byte
	for _, inbox := range inboxes {
		if store.IsLocal(inbox) {
			if err := c.EntityStore.InsertCollection(ctx, inbox, job.Object); err != nil {
				return err
			}
			continue
		}
		if body == nil {
			if body, err = w.render(ctx, c, job.Object); err != nil {
				return err
			}
		}
		if err := w.post(ctx, inbox, body); err != nil {
			return err
		}
	}
	return nil
}

// inboxes resolves a recipient to inbox identifiers. Local collections,
// such as a followers collection, fan out to their members.
func (w *Worker) inboxes(ctx context.Context, c *types.Context, store *retrieve.Store, recipient string) ([]string, error) {
	target, err := store.Get(ctx, recipient, false)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("recipient %s: %w", recipient, types.ErrNotFound)
	}

	if store.IsLocal(recipient) && (target.HasType(types.ASCollection) || target.HasType(types.ASOrderedCollection)) {
		page, err := c.EntityStore.ReadCollection(ctx, recipient, types.UnboundedPage, "")
		if err != nil {
			return nil, err
		}
		var out []string
		for _, member := range page.Items {
			actor, err := store.Get(ctx, member, false)
			if err != nil {
				return nil, err
			}
			if actor == nil {
				continue
			}
			out = append(out, actor.IDs(types.LDPInbox)...)
		}
		return out, nil
	}

	inbox := target.IDs(types.LDPInbox)
	if len(inbox) == 0 {
		return nil, fmt.Errorf("recipient %s has no inbox", recipient)
	}
	return inbox[:1], nil
}

func (w *Worker) render(ctx context.Context, c *types.Context, id string) ([]byte, error) {
	item, err := c.EntityStore.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("object %s: %w", id, types.ErrNotFound)
	}
	doc, err := w.Proc.Compact(ctx, item.ToJSON())
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (w *Worker) post(ctx context.Context, inbox string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building delivery to %s: %w", inbox, err)
	}
	req.Header.Set("Content-Type", "application/activity+json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", inbox, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("posting to %s: unexpected status %d", inbox, resp.StatusCode)
	}
	return nil
}
