package cli

import (
	"os"
	"time"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	dashboardIntervalFlag string
	dashboardHistoryFlag  int
	snapshotJSON          bool
	exportOutputFlag      string
	exportSamplesFlag     int
	alertsJSON            bool
	ackByFlag             string
	historyLimitFlag      int
	cleanOlderThanFlag    string
	cleanDryRun           bool
	cleanYes              bool
	initForce             bool
	initYes               bool
)

// snapshotCmd takes one sample and prints it.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Take one sample and print it",
	Long: `Collect a single snapshot of every enabled metric family and print
it as a table, or as JSON with --json.

Rate metrics (CPU usage, network throughput) are computed from a short
second read, so the command takes a fraction of a second.

Examples:
  vitals snapshot
  vitals snapshot --json
  vitals snapshot --json | jq '.data.samples'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(snapshotJSON)
	},
}

// exportCmd runs the collector headless and writes the export document.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Collect samples headless and write them as JSON",
	Long: `Run the collector without the dashboard for a number of ticks and
write the export document: the final snapshot plus the full retained
history series.

One tick is collected immediately; each additional sample waits one
collection interval.

Examples:
  vitals export
  vitals export --output vitals.json
  vitals export --samples 30 --output load-test.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportSamplesFlag < 1 {
			return errors.New(errors.ErrConfig,
				"--samples must be at least 1",
				"The export document needs at least one collected snapshot.")
		}
		return exportCommand(exportOutputFlag, exportSamplesFlag)
	},
}

// alertsCmd groups the alert ledger operations.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and manage alert episodes",
	Long: `Work with the alert ledger: the SQLite database recording every
alert episode (fired, acknowledged, resolved).

Examples:
  vitals alerts list
  vitals alerts ack 4f8a21c0 --by riley
  vitals alerts resolve 4f8a21c0
  vitals alerts history --limit 20`,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open alert episodes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsListCommand(alertsJSON)
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <id>",
	Short: "Acknowledge an active alert episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsAckCommand(args[0], ackByFlag)
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Manually resolve an alert episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsResolveCommand(args[0])
	},
}

var alertsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent alert episodes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsHistoryCommand(historyLimitFlag, alertsJSON)
	},
}

// cleanCmd prunes resolved episodes from the ledger.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Prune resolved alert episodes from the ledger",
	Long: `Delete resolved alert episodes older than the retention window from
the ledger database. Active and acknowledged episodes are never touched.

Examples:
  vitals clean
  vitals clean --older-than 168h
  vitals clean --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, err := time.ParseDuration(cleanOlderThanFlag)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid --older-than value: "+cleanOlderThanFlag,
				"Use a duration like 720h (30 days) or 168h (7 days).")
		}
		if olderThan < 0 {
			return errors.New(errors.ErrConfig,
				"--older-than cannot be negative",
				"Use a duration like 720h (30 days); 0 prunes every resolved episode.")
		}
		return cleanCommand(olderThan, cleanDryRun, cleanYes)
	},
}

// initCmd creates a vitals.yaml configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a vitals.yaml configuration",
	Long: `Initialize a new vitals configuration file in the current directory.

Walks through the sampling interval, metric families and notification
channels with interactive prompts, then writes vitals.yaml with the
answers filled in. With --yes the prompts are skipped and the built-in
defaults are written as-is.

Examples:
  vitals init
  vitals init --yes
  vitals init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce, initYes)
	},
}

// doctorCmd diagnoses environment and configuration issues.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose environment and config issues",
	Long: `Run diagnostic checks against everything vitals depends on.

Checks:
  - /proc readability (stat, meminfo, net/dev)
  - Configuration file validity
  - notify-send availability for desktop notifications
  - SMTP reachability when email is configured
  - State directory writability (alert ledger)
  - Terminal capabilities for the dashboard

Examples:
  vitals doctor
  vitals doctor --json
  vitals doctor --fix`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(doctorJSON, doctorFix)
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for vitals.

Examples:
  # Bash
  vitals completion bash > /etc/bash_completion.d/vitals

  # Zsh
  vitals completion zsh > "${fpath[1]}/_vitals"

  # Fish
  vitals completion fish > ~/.config/fish/completions/vitals.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// dashboard flags live on the root command
	rootCmd.Flags().StringVar(&dashboardIntervalFlag, "interval", "", "sampling interval (e.g. 2s, 5s); overrides config")
	rootCmd.Flags().IntVar(&dashboardHistoryFlag, "history", 0, "samples retained per metric; overrides config")

	// snapshot command flags
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "output in JSON format")

	// export command flags
	exportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().IntVar(&exportSamplesFlag, "samples", 1, "number of ticks to collect")

	// alerts command flags
	alertsListCmd.Flags().BoolVar(&alertsJSON, "json", false, "output in JSON format")
	alertsHistoryCmd.Flags().BoolVar(&alertsJSON, "json", false, "output in JSON format")
	alertsAckCmd.Flags().StringVar(&ackByFlag, "by", "", "who is acknowledging (defaults to $USER)")
	alertsHistoryCmd.Flags().IntVar(&historyLimitFlag, "limit", 50, "maximum episodes to show")
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAckCmd)
	alertsCmd.AddCommand(alertsResolveCmd)
	alertsCmd.AddCommand(alertsHistoryCmd)

	// clean command flags
	cleanCmd.Flags().StringVar(&cleanOlderThanFlag, "older-than", "720h", "prune resolved episodes older than this")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "show what would be pruned without deleting")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "skip the confirmation prompt")

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "skip the wizard and write the defaults")

	// Register all commands
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}
