package lease

import (
	"context"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// entityView guards a connection's EntityStore with the lease slot.
type entityView struct {
	slot  *slot
	inner types.EntityStore
}

func (v *entityView) Get(ctx context.Context, id string, local bool) (*types.Item, error) {
	if err := v.slot.enter(); err != nil {
		return nil, err
	}
	defer v.slot.leave()
	return v.inner.Get(ctx, id, local)
}

func (v *entityView) Put(ctx context.Context, id string, item *types.Item) error {
	if err := v.slot.enter(); err != nil {
		return err
	}
	defer v.slot.leave()
	return v.inner.Put(ctx, id, item)
}

func (v *entityView) ReadCollection(ctx context.Context, id string, limit uint32, cursor string) (types.CollectionPage, error) {
	if err := v.slot.enter(); err != nil {
		return types.CollectionPage{}, err
	}
	defer v.slot.leave()
	return v.inner.ReadCollection(ctx, id, limit, cursor)
}

func (v *entityView) FindCollection(ctx context.Context, id, item string) (bool, error) {
	if err := v.slot.enter(); err != nil {
		return false, err
	}
	defer v.slot.leave()
	return v.inner.FindCollection(ctx, id, item)
}

func (v *entityView) InsertCollection(ctx context.Context, id, item string) error {
	if err := v.slot.enter(); err != nil {
		return err
	}
	defer v.slot.leave()
	return v.inner.InsertCollection(ctx, id, item)
}

func (v *entityView) RemoveCollection(ctx context.Context, id, item string) error {
	if err := v.slot.enter(); err != nil {
		return err
	}
	defer v.slot.leave()
	return v.inner.RemoveCollection(ctx, id, item)
}

// queueView guards a connection's QueueStore with the lease slot.
type queueView struct {
	slot  *slot
	inner types.QueueStore
}

func (v *queueView) AddItem(ctx context.Context, event, data string) error {
	if err := v.slot.enter(); err != nil {
		return err
	}
	defer v.slot.leave()
	return v.inner.AddItem(ctx, event, data)
}

func (v *queueView) NextItem(ctx context.Context) (*types.QueueItem, error) {
	if err := v.slot.enter(); err != nil {
		return nil, err
	}
	defer v.slot.leave()
	return v.inner.NextItem(ctx)
}

func (v *queueView) MarkSuccess(ctx context.Context, item *types.QueueItem) error {
	if err := v.slot.enter(); err != nil {
		return err
	}
	defer v.slot.leave()
	return v.inner.MarkSuccess(ctx, item)
}

func (v *queueView) MarkFailure(ctx context.Context, item *types.QueueItem) error {
	if err := v.slot.enter(); err != nil {
		return err
	}
	defer v.slot.leave()
	return v.inner.MarkFailure(ctx, item)
}
