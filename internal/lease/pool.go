// Package lease hands out exclusively owned backend connections together
// with the entity and queue views derived from them.
package lease

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/kroeg/internal/sqlstore"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Connection is a live backend session. A Connection is owned by exactly
// one Lease once it has been handed out.
type Connection interface {
	EntityStore() types.EntityStore
	QueueStore() types.QueueStore
	Close() error
}

// Opener establishes a Connection for one backend kind.
type Opener func(ctx context.Context, cfg types.DatabaseConfig) (Connection, error)

// Connector hands out leases. *Pool satisfies it.
type Connector interface {
	Connect(ctx context.Context) (*Lease, error)
}

// Pool creates leases from immutable backend configuration. It holds no
// mutable state; every Connect produces an independent connection.
type Pool struct {
	config  types.DatabaseConfig
	openers map[string]Opener
	logger  *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithOpener registers the opener used for a backend kind.
func WithOpener(backend string, open Opener) Option {
	return func(p *Pool) {
		p.openers[backend] = open
	}
}

// WithLogger sets the pool logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

func openSQL(ctx context.Context, cfg types.DatabaseConfig) (Connection, error) {
	return sqlstore.Open(ctx, cfg)
}

// NewPool validates cfg and returns a pool for it.
func NewPool(cfg types.DatabaseConfig, opts ...Option) (*Pool, error) {
	p := &Pool{
		config: cfg,
		openers: map[string]Opener{
			types.BackendSQLite:     openSQL,
			types.BackendPostgreSQL: openSQL,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, ok := p.openers[cfg.Backend]; !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
	p.logger = p.logger.With("component", "lease", "backend", cfg.Backend)
	return p, nil
}

// Connect opens a new connection and leases it to the caller, who must
// Close the returned lease. Failures are reported as ErrConnectionFailed
// and never retried.
func (p *Pool) Connect(ctx context.Context) (*Lease, error) {
	open := p.openers[p.config.Backend]
	conn, err := open(ctx, p.config)
	if err != nil {
		p.logger.Error("connect failed", "error", err)
		return nil, fmt.Errorf("connect: %w: %w", types.ErrConnectionFailed, err)
	}
	return newLease(conn), nil
}
