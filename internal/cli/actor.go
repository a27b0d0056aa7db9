package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kroeg/internal/command"
)

func newActorCmd(flags *rootFlags) *cobra.Command {
	var username, name string
	actor := &cobra.Command{
		Use:   "actor <ACTOR> <create|token>",
		Short: "Create an actor or issue a bearer token for one",
		Long: "create stores a Person with key material, an inbox, and an outbox.\n" +
			"token prints a signed bearer token for an existing actor.",
		Args:      checkArgs(cobra.ExactArgs(2)),
		ValidArgs: []string{"create", "token"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, action := args[0], args[1]
			switch action {
			case "create":
				return flags.runCommand(cmd, command.CreateActor{ID: id, Username: username, DisplayName: name})
			case "token":
				return flags.runCommand(cmd, command.IssueToken{ActorID: id})
			default:
				return usageErr("unknown actor action %q (want create or token)", action)
			}
		},
	}
	actor.Flags().StringVar(&username, "username", "", "preferredUsername of a created actor")
	actor.Flags().StringVar(&name, "name", "", "display name of a created actor")
	return actor
}
