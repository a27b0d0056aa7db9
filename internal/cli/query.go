package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/command"
)

func newQueryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Run a raw backend query read from stdin and print TSV rows",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []string
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					lines = append(lines, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading query: %w", err)
			}
			return flags.runCommand(cmd, command.RunQuery{Lines: lines})
		},
	}
}
