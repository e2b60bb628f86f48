package sites

import (
	"fmt"
	"strconv"

	"github.com/crucial707/scantron/cmd/cli/client"
	"github.com/crucial707/scantron/cmd/cli/config"
	"github.com/crucial707/scantron/cmd/cli/output"
	"github.com/crucial707/scantron/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// Init Sites
// ==========================
func InitSites(rootCmd *cobra.Command) {
	sitesCmd := &cobra.Command{
		Use:   "sites",
		Short: "Manage sites",
	}

	sitesCmd.AddCommand(
		listSitesCmd(),
		getSiteCmd(),
		createSiteCmd(),
		deleteSiteCmd(),
	)

	rootCmd.AddCommand(sitesCmd)
}

func siteRows(list []models.Site) [][]interface{} {
	rows := make([][]interface{}, 0, len(list))
	for _, s := range list {
		engine := "-"
		switch {
		case s.ScanEngine != nil:
			engine = "engine " + strconv.Itoa(*s.ScanEngine)
		case s.ScanEnginePool != nil:
			engine = "pool " + strconv.Itoa(*s.ScanEnginePool)
		}
		rows = append(rows, []interface{}{s.ID, s.SiteName, s.Targets, s.ExcludedTargets, s.ScanCommand, engine})
	}
	return rows
}

var siteHeaders = []string{"ID", "Name", "Targets", "Excluded", "Command", "Engine"}

// ==========================
// LIST
// ==========================
func listSitesCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authed()
			if err != nil {
				return err
			}
			var page client.List[models.Site]
			if err := c.Get(cmd.Context(), "/v1/sites", client.Page(limit, offset), &page); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), page, siteHeaders, siteRows(page.Items))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of sites")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of sites to skip")
	return cmd
}

// ==========================
// GET
// ==========================
func getSiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one site",
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
			var site models.Site
			if err := c.Get(cmd.Context(), fmt.Sprintf("/v1/sites/%d", id), nil, &site); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), site, siteHeaders, siteRows([]models.Site{site}))
		},
	}
}

// ==========================
// CREATE
// ==========================
func createSiteCmd() *cobra.Command {
	var name, description, targets, excluded string
	var command, engine, pool int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a site",
		Long: `Create a site. Targets accept IP addresses, CIDR networks, ranges such as
10.0.0.1-20 and domain names, separated by commas or spaces. Give exactly one of
--engine and --pool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"site_name":        name,
				"description":      description,
				"targets":          targets,
				"excluded_targets": excluded,
				"scan_command":     command,
			}
			if cmd.Flags().Changed("engine") {
				payload["scan_engine"] = engine
			}
			if cmd.Flags().Changed("pool") {
				payload["scan_engine_pool"] = pool
			}

			c, err := client.Authed()
			if err != nil {
				return err
			}
			var site models.Site
			if err := c.Post(cmd.Context(), "/v1/sites", payload, &site); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), site, siteHeaders, siteRows([]models.Site{site}))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "site name")
	cmd.Flags().StringVar(&description, "description", "", "site description")
	cmd.Flags().StringVar(&targets, "targets", "", "targets to scan")
	cmd.Flags().StringVar(&excluded, "excluded", "", "targets to skip")
	cmd.Flags().IntVar(&command, "command", 0, "scan command id")
	cmd.Flags().IntVar(&engine, "engine", 0, "scan engine id")
	cmd.Flags().IntVar(&pool, "pool", 0, "scan engine pool id")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("targets")
	cmd.MarkFlagRequired("command")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteSiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a site",
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
			if err := c.Delete(cmd.Context(), fmt.Sprintf("/v1/sites/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site %d deleted\n", id)
			return nil
		},
	}
}
