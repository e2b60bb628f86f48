package scheduled

import (
	"fmt"
	"time"

	"github.com/crucial707/scantron/cmd/cli/client"
	"github.com/crucial707/scantron/cmd/cli/config"
	"github.com/crucial707/scantron/cmd/cli/output"
	"github.com/crucial707/scantron/internal/models"
	"github.com/spf13/cobra"
)

// InitScheduled registers the scheduled-scan commands on the root command.
func InitScheduled(rootCmd *cobra.Command) {
	scheduledCmd := &cobra.Command{
		Use:     "scheduled",
		Aliases: []string{"scheduled-scans"},
		Short:   "Inspect scheduled scans and control running ones",
	}

	scheduledCmd.AddCommand(
		listScheduledCmd(),
		statusCmd(),
		requestCmd("pause", "Ask the engine to pause a scan", models.ScanStatusPause),
		requestCmd("cancel", "Ask the engine to cancel a scan", models.ScanStatusCancel),
	)

	rootCmd.AddCommand(scheduledCmd)
}

var scheduledHeaders = []string{"ID", "Site", "Engine", "Start", "Status", "Completed", "Targets"}

func scheduledRows(list []models.ScheduledScan) [][]interface{} {
	rows := make([][]interface{}, 0, len(list))
	for _, s := range list {
		completed := "-"
		if s.CompletedTime != nil {
			completed = s.CompletedTime.Format(time.RFC3339)
		}
		rows = append(rows, []interface{}{s.ID, s.SiteName, s.ScanEngine, s.StartDatetime.Format(time.RFC3339),
			s.ScanStatus, completed, s.Targets})
	}
	return rows
}

func listScheduledCmd() *cobra.Command {
	var status, engine string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authed()
			if err != nil {
				return err
			}
			q := client.Page(limit, offset)
			if status != "" {
				q.Set("scan_status", status)
			}
			if engine != "" {
				q.Set("scan_engine", engine)
			}
			var page client.List[models.ScheduledScan]
			if err := c.Get(cmd.Context(), "/v1/scheduled_scans", q, &page); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), page, scheduledHeaders, scheduledRows(page.Items))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only scans in this status")
	cmd.Flags().StringVar(&engine, "engine", "", "only scans for this engine name")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of rows to skip")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id]",
		Short: "Show one scheduled scan",
		Long: `Show the status of one scheduled scan.

Example:
  scantron scheduled status 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := client.Authed()
			if err != nil {
				return err
			}
			var s models.ScheduledScan
			if err := c.Get(cmd.Context(), fmt.Sprintf("/v1/scheduled_scans/%d", id), nil, &s); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), s, scheduledHeaders, scheduledRows([]models.ScheduledScan{s}))
		},
	}
}

// requestCmd sets a request status that the owning engine acts on at its next check-in.
func requestCmd(verb, short, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := client.Authed()
			if err != nil {
				return err
			}
			var s models.ScheduledScan
			if err := c.Patch(cmd.Context(), fmt.Sprintf("/v1/scheduled_scans/%d", id),
				map[string]string{"scan_status": status}, &s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled scan %d is now %q\n", s.ID, s.ScanStatus)
			return nil
		},
	}
}
