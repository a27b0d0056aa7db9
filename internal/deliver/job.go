// Package deliver drains the queue store, handing stored objects to the
// inboxes of their recipients.
package deliver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// EventDeliver is the queue event of a pending delivery.
const EventDeliver = "deliver"

// Job is the payload of a deliver queue item.
type Job struct {
	Object    string `json:"object"`
	Recipient string `json:"recipient"`
}

// Enqueue schedules object for delivery to recipient.
func Enqueue(ctx context.Context, queue types.QueueStore, object, recipient string) error {
	data, err := json.Marshal(Job{Object: object, Recipient: recipient})
	if err != nil {
		return fmt.Errorf("encoding delivery: %w", err)
	}
	return queue.AddItem(ctx, EventDeliver, string(data))
}

// Recipients lists the audience of an item, skipping the public collection
// and duplicates.
func Recipients(item *types.Item) []string {
	seen := map[string]bool{types.ASPublic: true}
	var out []string
	for _, prop := range []string{types.ASTo, types.ASCc, types.ASBto, types.ASBcc, types.ASAudience} {
		for _, id := range item.IDs(prop) {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func decodeJob(item *types.QueueItem) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(item.Data), &job); err != nil {
		return Job{}, fmt.Errorf("decoding delivery %s: %w: %w", item.ID, types.ErrParseFailed, err)
	}
	if job.Object == "" || job.Recipient == "" {
		return Job{}, fmt.Errorf("decoding delivery %s: %w: incomplete job", item.ID, types.ErrParseFailed)
	}
	return job, nil
}
