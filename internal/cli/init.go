package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/config"
	"github.com/mesh-intelligence/kroeg/internal/paths"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration and initialize the store",
		Long: "Create the configuration directory with a default config.yaml when none\n" +
			"exists, then connect once so the backend schema is created.",
		Args: checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return err
			}
			if flags.configFile == "" {
				path, written, err := config.WriteDefault(dir)
				if err != nil {
					return err
				}
				if written {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				}
			}

			e, err := flags.load(cmd)
			if err != nil {
				return err
			}
			l, err := e.pool.Connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := l.Close(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "kroeg initialized")
			return nil
		},
	}
}
