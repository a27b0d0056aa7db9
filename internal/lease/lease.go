package lease

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// noCopy makes go vet report copies of a Lease.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// slot is the validity record the views consult on every call.
type slot struct {
	mu       sync.Mutex // held for the duration of one view call
	released atomic.Bool
}

func (s *slot) enter() error {
	if s.released.Load() {
		return types.ErrLeaseReleased
	}
	if !s.mu.TryLock() {
		return types.ErrLeaseBusy
	}
	if s.released.Load() {
		s.mu.Unlock()
		return types.ErrLeaseReleased
	}
	return nil
}

func (s *slot) leave() { s.mu.Unlock() }

// Lease owns one Connection and the fixed pair of views derived from it.
// The views stay valid until Close; afterwards every call through them
// returns ErrLeaseReleased. A Lease must not be copied.
type Lease struct {
	_ noCopy

	conn     Connection
	slot     *slot
	entities *entityView
	queue    *queueView

	closeOnce sync.Once
	closeErr  error
}

func newLease(conn Connection) *Lease {
	s := &slot{}
	return &Lease{
		conn:     conn,
		slot:     s,
		entities: &entityView{slot: s, inner: conn.EntityStore()},
		queue:    &queueView{slot: s, inner: conn.QueueStore()},
	}
}

// Get returns the entity and queue views. Repeated calls return the same
// pair.
func (l *Lease) Get() (types.EntityStore, types.QueueStore) {
	return l.entities, l.queue
}

// Query runs lines through the backend's native query language.
func (l *Lease) Query(ctx context.Context, lines []string) ([][]string, error) {
	q, ok := l.conn.(types.Querier)
	if !ok {
		return nil, types.ErrQueryUnsupported
	}
	if err := l.slot.enter(); err != nil {
		return nil, err
	}
	defer l.slot.leave()
	return q.Query(ctx, lines)
}

// Released reports whether Close has been called.
func (l *Lease) Released() bool {
	return l.slot.released.Load()
}

// Close invalidates both views, waiting for an in-flight call to finish,
// then tears the connection down. The connection is closed exactly once;
// later calls return the first result.
func (l *Lease) Close() error {
	l.closeOnce.Do(func() {
		l.slot.mu.Lock()
		l.slot.released.Store(true)
		l.slot.mu.Unlock()

		l.closeErr = l.conn.Close()
	})
	return l.closeErr
}
