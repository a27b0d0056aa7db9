package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/command"
)

func newEntityCmd(flags *rootFlags) *cobra.Command {
	var (
		remote bool
		format command.Format
	)
	entity := &cobra.Command{
		Use:   "entity",
		Short: "Read and write stored entities and collections",
	}
	entity.PersistentFlags().Var(&format, "format", "output format: expand or compact")

	get := &cobra.Command{
		Use:   "get <ID>",
		Short: "Print one entity",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runCommand(cmd, command.GetEntity{ID: args[0], Local: !remote, Format: format})
		},
	}
	get.Flags().BoolVar(&remote, "remote", false, "fetch the entity from its origin when it is not stored")

	set := &cobra.Command{
		Use:   "set <ID>",
		Short: "Store the JSON-LD document read from stdin under ID",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runCommand(cmd, command.SetEntity{ID: args[0], Format: format})
		},
	}

	list := &cobra.Command{
		Use:   "list <ID>",
		Short: "Print the members of a collection",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runCommand(cmd, command.ListCollection{ID: args[0]})
		},
	}

	add := &cobra.Command{
		Use:   "add <ID> <ITEM>",
		Short: "Insert ITEM into collection ID",
		Args:  checkArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runCommand(cmd, command.AddToCollection{ID: args[0], Item: args[1]})
		},
	}

	del := &cobra.Command{
		Use:   "del <ID> <ITEM>",
		Short: "Remove ITEM from collection ID",
		Args:  checkArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.runCommand(cmd, command.RemoveFromCollection{ID: args[0], Item: args[1]})
		},
	}

	entity.AddCommand(get, set, list, add, del)
	return entity
}
