package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) bandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bands",
		Short: "List the loaded age bands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.loadTables(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), store.Bands())
		},
	}
}
