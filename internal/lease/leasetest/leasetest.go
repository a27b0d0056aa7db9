// Package leasetest provides sqlite-backed leases for tests.
package leasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kroeg/internal/lease"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Config returns a sqlite configuration inside a test temporary directory.
func Config(t testing.TB) types.DatabaseConfig {
	t.Helper()
	return types.DatabaseConfig{
		Backend: types.BackendSQLite,
		Path:    filepath.Join(t.TempDir(), "kroeg.db"),
	}
}

// Open leases a fresh sqlite store that is released when the test ends.
func Open(t testing.TB) *lease.Lease {
	t.Helper()
	return OpenConfig(t, Config(t))
}

// OpenConfig leases a connection for cfg that is released when the test ends.
func OpenConfig(t testing.TB, cfg types.DatabaseConfig) *lease.Lease {
	t.Helper()
	pool, err := lease.NewPool(cfg)
	require.NoError(t, err)
	l, err := pool.Connect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

// Context assembles a CLI context over l for base.
func Context(l *lease.Lease, base string) *types.Context {
	return types.NewContext(l, types.CLIUser(""), types.ServerConfig{
		BaseURI:    base,
		Name:       "kroeg",
		InstanceID: 1,
	})
}
