package targets

import (
	"fmt"
	"strings"

	"github.com/crucial707/scantron/cmd/cli/config"
	"github.com/crucial707/scantron/cmd/cli/output"
	scantargets "github.com/crucial707/scantron/internal/targets"
	"github.com/spf13/cobra"
)

// InitTargets registers the offline target tools on the root command.
func InitTargets(rootCmd *cobra.Command) {
	targetsCmd := &cobra.Command{
		Use:   "targets",
		Short: "Work with target strings without contacting the API",
	}
	targetsCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(targetsCmd)
}

type checkResult struct {
	Targets        []string `json:"targets"`
	Nmap           string   `json:"nmap"`
	Hosts          uint64   `json:"hosts"`
	InvalidTargets []string `json:"invalid_targets"`
}

func checkCmd() *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "check [targets...]",
		Short: "Parse and normalize targets the way the console stores them",
		Long: `Parse targets (IP addresses, CIDR networks, ranges such as 10.0.0.1-20 and domain
names) and print the normalized list. Targets fully covered by --exclude are dropped.
Exits with an error when any target is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := scantargets.Extract(strings.Join(args, " "))
			if exclude != "" {
				ex := scantargets.Extract(exclude)
				if !ex.Valid() {
					return fmt.Errorf("invalid excluded targets: %s", strings.Join(ex.InvalidTargets, ","))
				}
				r = scantargets.NewExclusionSet(ex).Filter(r)
			}

			res := checkResult{
				Targets:        r.AsList(),
				Nmap:           r.AsNmap(),
				Hosts:          r.Total(),
				InvalidTargets: r.InvalidTargets,
			}
			rows := make([][]interface{}, 0, len(res.Targets)+len(res.InvalidTargets))
			for _, t := range res.Targets {
				rows = append(rows, []interface{}{t, "ok"})
			}
			for _, t := range res.InvalidTargets {
				rows = append(rows, []interface{}{t, "invalid"})
			}
			if err := output.Print(cmd.OutOrStdout(), config.Output(), res, []string{"Target", "Status"}, rows); err != nil {
				return err
			}
			if !r.Valid() {
				return fmt.Errorf("invalid targets: %s", strings.Join(r.InvalidTargets, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&exclude, "exclude", "", "targets to leave out")
	return cmd
}
