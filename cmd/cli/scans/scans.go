package scans

import (
	"fmt"
	"time"

	"github.com/crucial707/scantron/cmd/cli/client"
	"github.com/crucial707/scantron/cmd/cli/config"
	"github.com/crucial707/scantron/cmd/cli/output"
	"github.com/crucial707/scantron/internal/models"
	"github.com/spf13/cobra"
)

// InitScans registers the scan definition commands on the root command.
func InitScans(rootCmd *cobra.Command) {
	scansCmd := &cobra.Command{
		Use:   "scans",
		Short: "Manage scan definitions (when and how often a site is scanned)",
	}

	scansCmd.AddCommand(
		listScansCmd(),
		createScanCmd(),
		toggleScanCmd("enable", "Enable a scan", true),
		toggleScanCmd("disable", "Disable a scan; it stays stored but no longer runs", false),
		deleteScanCmd(),
	)

	rootCmd.AddCommand(scansCmd)
}

var scanHeaders = []string{"ID", "Name", "Site", "Enabled", "Start", "Recurrences"}

func scanRows(list []models.Scan) [][]interface{} {
	rows := make([][]interface{}, 0, len(list))
	for _, s := range list {
		rec := s.Recurrences
		if rec == "" {
			rec = "once"
		}
		rows = append(rows, []interface{}{s.ID, s.ScanName, s.Site, s.EnableScan, s.StartTime.Format(time.RFC3339), rec})
	}
	return rows
}

func listScansCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authed()
			if err != nil {
				return err
			}
			var page client.List[models.Scan]
			if err := c.Get(cmd.Context(), "/v1/scans", client.Page(limit, offset), &page); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), page, scanHeaders, scanRows(page.Items))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of scans")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of scans to skip")
	return cmd
}

func createScanCmd() *cobra.Command {
	var site int
	var name, start, recurrences string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a scan",
		Long: `Create a scan for a site. --start is RFC3339 (default: now). --recurrences is a cron
spec such as "0 2 * * *" or "@daily"; without it the scan runs once at --start.`,
		Example: `  scantron scans create --site 1 --name nightly --start 2026-01-01T02:00:00Z --recurrences "0 2 * * *"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now().UTC().Truncate(time.Minute)
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				startTime = t
			}

			c, err := client.Authed()
			if err != nil {
				return err
			}
			payload := map[string]interface{}{
				"site":        site,
				"scan_name":   name,
				"enable_scan": !disabled,
				"start_time":  startTime,
				"recurrences": recurrences,
			}
			var scan models.Scan
			if err := c.Post(cmd.Context(), "/v1/scans", payload, &scan); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), scan, scanHeaders, scanRows([]models.Scan{scan}))
		},
	}

	cmd.Flags().IntVar(&site, "site", 0, "site id")
	cmd.Flags().StringVar(&name, "name", "", "scan name")
	cmd.Flags().StringVar(&start, "start", "", "first run, RFC3339")
	cmd.Flags().StringVar(&recurrences, "recurrences", "", "cron spec; empty runs once")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the scan disabled")
	cmd.MarkFlagRequired("site")
	cmd.MarkFlagRequired("name")

	return cmd
}

func toggleScanCmd(verb, short string, enable bool) *cobra.Command {
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
			var scan models.Scan
			if err := c.Patch(cmd.Context(), fmt.Sprintf("/v1/scans/%d", id), map[string]bool{"enable_scan": enable}, &scan); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), scan, scanHeaders, scanRows([]models.Scan{scan}))
		},
	}
}

func deleteScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a scan",
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
			if err := c.Delete(cmd.Context(), fmt.Sprintf("/v1/scans/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scan %d deleted\n", id)
			return nil
		},
	}
}
