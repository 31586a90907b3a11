// Package cli implements the vitals command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to a command function for the actual work. The general
// structure follows a clean separation between:
//
//   - Command definitions (cobra.Command instances)
//   - Command functions (dashboardCommand, snapshotCommand, ...)
//   - Implementation details (in other internal packages)
//
// # Command Structure
//
// The root command is "vitals"; running it bare starts the dashboard.
// Subcommands cover the non-interactive operations:
//
//	vitals                - Live terminal dashboard
//	vitals snapshot       - One sample, printed as a table or JSON
//	vitals export         - Headless collection to a JSON document
//	vitals alerts         - List, ack, resolve, and show alert episodes
//	vitals clean          - Prune resolved episodes from the ledger
//	vitals init           - Create vitals.yaml interactively
//	vitals doctor         - Diagnose environment and config issues
//
// # Flag Handling
//
// The global --config flag is defined on the root command and available
// to all subcommands. Command-specific flags like --json and --samples
// are defined on individual commands; the dashboard overrides
// (--interval, --history) live on the root command itself.
//
// # Output Conventions
//
// Commands that support --json wrap their payload in a stable envelope
// (see JSONEnvelope) so scripts can rely on success/error shape
// regardless of which command produced it. Human output uses lipgloss
// styling and degrades to plain text on dumb terminals.
package cli
