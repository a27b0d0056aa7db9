// Package sqlstore implements the entity and queue stores on a single SQL
// connection. SQLite (modernc.org/sqlite) and PostgreSQL (pgx) are supported;
// both share one schema and differ only in their dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Conn is one live backend session. It owns a private *sql.DB limited to a
// single physical connection and the *sql.Conn checked out of it.
type Conn struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect dialect
	logger  *slog.Logger

	entities *EntityStore
	queue    *QueueStore

	closeOnce sync.Once
	closeErr  error
}

// Open establishes a session with the backend described by cfg and makes
// sure the schema exists. It never retries.
func Open(ctx context.Context, cfg types.DatabaseConfig) (*Conn, error) {
	logger := slog.Default().With("component", "sqlstore", "backend", cfg.Backend)

	d, dsn, err := dialectFor(cfg)
	if err != nil {
		return nil, err
	}

	if d.name == types.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}

	c := &Conn{db: db, conn: conn, dialect: d, logger: logger}

	if err := c.prepare(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.entities = &EntityStore{c: c}
	c.queue = &QueueStore{c: c}

	logger.Debug("connection established")
	return c, nil
}

// prepare applies session settings and creates the schema.
func (c *Conn) prepare(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if c.dialect.name == types.BackendSQLite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := c.conn.ExecContext(ctx, pragma); err != nil {
				return fmt.Errorf("applying %q: %w", pragma, err)
			}
		}
	}
	for _, stmt := range c.dialect.schema() {
		if _, err := c.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// EntityStore returns the entity view bound to this session.
func (c *Conn) EntityStore() types.EntityStore { return c.entities }

// QueueStore returns the queue view bound to this session.
func (c *Conn) QueueStore() types.QueueStore { return c.queue }

// Close returns the connection and closes the private pool. Only the first
// call tears the session down; later calls return the same result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			if err := c.conn.Close(); err != nil {
				c.closeErr = err
			}
		}
		if err := c.db.Close(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
		c.logger.Debug("connection released")
	})
	return c.closeErr
}

func (c *Conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, c.dialect.rebind(query), args...)
}

func (c *Conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, c.dialect.rebind(query), args...)
}

func (c *Conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, c.dialect.rebind(query), args...)
}

// storeErr tags a backend failure with the operation that failed.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrStoreFailed, err)
}
