package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/rpsarena/internal/model"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "House bot commands",
	}

	cmd.AddCommand(newBotSpawnCmd())

	return cmd
}

func newBotSpawnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spawn <strategy>",
		Short: "Add a server-side bot to the queue",
		Long:  "Add a server-side bot to the matchmaking queue.\n\nStrategies: " + strings.Join(model.ValidBotStrategies(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"strategy": args[0]}
			var result Bot

			if err := client.Post(cmd.Context(), "/api/v1/bots", body, &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}
