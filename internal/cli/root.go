package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag is the persistent --config value, consulted by every
// command through Config().
var configFlag string

// rootCmd is the bare `vitals` invocation: it launches the dashboard.
var rootCmd = &cobra.Command{
	Use:   "vitals",
	Short: "Terminal dashboard for host and process vitals",
	Long: `vitals samples CPU, memory, disk, network and per-process metrics
from the local /proc filesystem and renders them as a live terminal
dashboard with history sparklines, alert rules and notifications.

Running vitals with no arguments starts the dashboard. Non-interactive
commands cover one-shot snapshots, JSON export, and the alert ledger.

Examples:
  vitals                      # live dashboard
  vitals --interval 5s        # slower sampling
  vitals snapshot --json      # one sample, machine readable
  vitals alerts list          # open alert episodes
  vitals doctor               # environment diagnostics`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(dashboardIntervalFlag, dashboardHistoryFlag)
	},
}

// Execute runs the root command. Errors are printed in the structured
// ✗ format; cobra's own usage dump is silenced so the suggestion line
// is the last thing the user sees.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Config returns the --config flag value; empty means discovery order.
func Config() string {
	return configFlag
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
}
