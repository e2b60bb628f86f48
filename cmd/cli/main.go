package main

import (
	"fmt"
	"os"

	"github.com/crucial707/scantron/cmd/cli/auth"
	"github.com/crucial707/scantron/cmd/cli/root"
	"github.com/crucial707/scantron/cmd/cli/scans"
	"github.com/crucial707/scantron/cmd/cli/scheduled"
	"github.com/crucial707/scantron/cmd/cli/sites"
	"github.com/crucial707/scantron/cmd/cli/targets"
	"github.com/crucial707/scantron/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	sites.InitSites(rootCmd)
	scans.InitScans(rootCmd)
	scheduled.InitScheduled(rootCmd)
	targets.InitTargets(rootCmd)
	users.InitUsers(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
