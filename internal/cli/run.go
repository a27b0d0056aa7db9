package cli

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/command"
	"github.com/mesh-intelligence/kroeg/internal/config"
	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/internal/lease"
	"github.com/mesh-intelligence/kroeg/internal/logging"
	"github.com/mesh-intelligence/kroeg/internal/paths"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// httpTimeout bounds remote entity and context fetches.
const httpTimeout = 30 * time.Second

// env is what every store-backed command needs.
type env struct {
	cfg    types.Config
	logger *slog.Logger
	client *http.Client
	proc   jsonld.Processor
	pool   *lease.Pool
}

func (f *rootFlags) load(cmd *cobra.Command) (*env, error) {
	dir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(config.Options{File: f.configFile, Dir: dir, DataDir: f.dataDir})
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, usageErr("logging.level: %v", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	client := &http.Client{Timeout: httpTimeout}
	proc, err := jsonld.New(client)
	if err != nil {
		return nil, err
	}
	pool, err := lease.NewPool(cfg.Database, lease.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, client: client, proc: proc, pool: pool}, nil
}

// runCommand leases one connection, runs c, and releases the lease.
func (f *rootFlags) runCommand(cmd *cobra.Command, c command.Command) error {
	e, err := f.load(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	l, err := e.pool.Connect(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	runner := &command.Runner{
		Server: e.cfg.Server,
		Proc:   e.proc,
		Client: e.client,
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
		Logger: e.logger,
	}
	return runner.Run(ctx, l, c)
}
