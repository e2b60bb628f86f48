package root

import (
	"github.com/crucial707/scantron/cmd/cli/config"
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "scantron",
	Short:         "Scantron console CLI",
	Long:          "Command line interface for the Scantron console API: sites, scans, scheduled scans and targets.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.BindFlags(cmd.Root().PersistentFlags())
	},
}

func init() {
	RootCmd.PersistentFlags().String("api-url", "", "API base URL (env SCANTRON_API_URL, default http://localhost:8080)")
	RootCmd.PersistentFlags().StringP("output", "o", "", "Output format: table, json or yaml (env SCANTRON_OUTPUT)")
}

// GetRoot returns the RootCmd.
func GetRoot() *cobra.Command {
	return RootCmd
}
