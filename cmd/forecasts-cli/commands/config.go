package commands

import (
	"encoding/json"
	"fmt"
	"soccer-forecasts/cmd/forecasts-cli/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the effective configuration after defaults, config files and flags are merged.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())

		serialized, err := json.MarshalIndent(g.Config.Redacted(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(serialized))

		unknown := g.Config.UnknownCompetitions()
		if len(unknown) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d configured competitions are not in the known catalogue\n", len(unknown))
		}
		return nil
	},
}
