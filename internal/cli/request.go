package cli

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/command"
)

func newRequestCmd(flags *rootFlags) *cobra.Command {
	var (
		user   string
		format command.Format
	)
	request := &cobra.Command{
		Use:   "request",
		Short: "Run a request through the server pipeline without a socket",
	}
	request.PersistentFlags().Var(&format, "format", "body format: expand or compact")
	request.PersistentFlags().StringVar(&user, "user", "", "principal to act as (default: anonymous)")

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		method := method
		request.AddCommand(&cobra.Command{
			Use:   strings.ToLower(method) + " <URL>",
			Short: "Simulate a " + method + " request; POST bodies are read from stdin",
			Args:  checkArgs(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return flags.runCommand(cmd, command.SimulateRequest{
					Method: method,
					URL:    args[0],
					User:   user,
					Format: format,
				})
			},
		})
	}
	return request
}
