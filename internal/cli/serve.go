package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/kroeg/internal/deliver"
	"github.com/mesh-intelligence/kroeg/internal/server"
)

// shutdownTimeout bounds graceful listener shutdown.
const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		listen  string
		workers int
	)
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the listener and delivery workers",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("listen") {
				listen = e.cfg.Listen
			}
			if !cmd.Flags().Changed("deliver") {
				workers = e.cfg.Deliver
			}
			if listen == "" && workers == 0 {
				return usageErr("nothing to run: set listen or deliver")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			for i := 0; i < workers; i++ {
				w := &deliver.Worker{
					Pool:   e.pool,
					Server: e.cfg.Server,
					Client: e.client,
					Proc:   e.proc,
					Logger: e.logger.With("component", "deliver", "worker", i),
				}
				g.Go(func() error { return w.Run(ctx) })
			}

			if listen != "" {
				srv := &http.Server{
					Addr: listen,
					Handler: (&server.Server{
						Pool:   e.pool,
						Config: e.cfg.Server,
						Proc:   e.proc,
						Logger: e.logger.With("component", "server"),
					}).Handler(),
					ReadHeaderTimeout: 10 * time.Second,
				}
				g.Go(func() error {
					e.logger.Info("listening", "addr", listen, "base_uri", e.cfg.Server.BaseURI)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("listen: %w", err)
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}

			e.logger.Info("kroeg starting", "version", Version, "workers", workers)
			return g.Wait()
		},
	}
	serve.Flags().StringVar(&listen, "listen", "", "listen address (default: listen from config)")
	serve.Flags().IntVar(&workers, "deliver", 0, "number of delivery workers (default: deliver from config)")
	return serve
}
