// Package cli implements the kroeg-call command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/auth"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values for one command tree.
type rootFlags struct {
	configDir  string
	configFile string
	dataDir    string
}

// NewRootCmd creates the top-level "kroeg-call" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "kroeg-call",
		Short: "Operator tool for a kroeg ActivityPub server",
		Long: "kroeg-call reads and writes entities and collections in the server store,\n" +
			"simulates requests through the server pipeline, manages actors, and can run\n" +
			"the listener and delivery workers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/kroeg)")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "configuration file (overrides --config-dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory of the default sqlite database")

	root.AddCommand(newEntityCmd(flags))
	root.AddCommand(newRequestCmd(flags))
	root.AddCommand(newActorCmd(flags))
	root.AddCommand(newQueryCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes the command line args and returns the exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	color.New(color.FgRed).Fprintf(stderr, "error: %v\n", err)
	return exitCode(err)
}

// userErrors are failures caused by the operator's input.
var userErrors = []error{
	types.ErrParseFailed,
	types.ErrNotFound,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrDatabaseIncomplete,
	types.ErrBaseURIEmpty,
	types.ErrQueryUnsupported,
	auth.ErrInvalidToken,
	errUsage,
}

// errUsage marks argument errors detected by the commands themselves.
var errUsage = errors.New("usage")

func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	var flagErr *flagError
	if errors.As(err, &flagErr) {
		return exitUserError
	}
	return exitSysError
}

// flagError wraps cobra argument and flag validation failures.
type flagError struct{ err error }

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

// checkArgs wraps a positional-argument validator so that its failures
// map to the user-error exit code.
func checkArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return &flagError{err: err}
		}
		return nil
	}
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
