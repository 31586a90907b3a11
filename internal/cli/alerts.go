package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/ledger"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// shortIDLen is how many id characters the tables show; enough to stay
// unique at any plausible episode count.
const shortIDLen = 8

// alertsListCommand prints open episodes (active or acknowledged).
func alertsListCommand(asJSON bool) error {
	led, err := openConfiguredLedger()
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, cancel := opCtx()
	defer cancel()
	entries, err := led.Active(ctx)
	if err != nil {
		return wrapLedgerErr(err)
	}

	if asJSON {
		return WriteJSONSuccess(os.Stdout, entries)
	}

	if len(entries) == 0 {
		fmt.Printf("%s No open alerts\n", ui.SymbolSuccess)
		return nil
	}
	printEntries(entries)
	return nil
}

// alertsAckCommand acknowledges an active episode.
func alertsAckCommand(idOrPrefix, by string) error {
	if by == "" {
		by = os.Getenv("USER")
	}
	if by == "" {
		return errors.New(errors.ErrConfig,
			"Could not determine who is acknowledging",
			"Pass --by <name>; $USER is empty in this environment.")
	}

	led, err := openConfiguredLedger()
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, cancel := opCtx()
	defer cancel()
	entry, err := led.Find(ctx, idOrPrefix)
	if err != nil {
		return err
	}
	if err := led.Acknowledge(ctx, entry.ID, by); err != nil {
		return err
	}

	fmt.Printf("%s Acknowledged %s (%s) as %s\n",
		ui.SymbolSuccess, shortID(entry.ID), entry.RuleID, by)
	return nil
}

// alertsResolveCommand manually closes an open episode.
func alertsResolveCommand(idOrPrefix string) error {
	led, err := openConfiguredLedger()
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, cancel := opCtx()
	defer cancel()
	entry, err := led.Find(ctx, idOrPrefix)
	if err != nil {
		return err
	}
	if err := led.Resolve(ctx, entry.ID); err != nil {
		return err
	}

	fmt.Printf("%s Resolved %s (%s)\n", ui.SymbolSuccess, shortID(entry.ID), entry.RuleID)
	return nil
}

// alertsHistoryCommand prints recent episodes of any status.
func alertsHistoryCommand(limit int, asJSON bool) error {
	led, err := openConfiguredLedger()
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, cancel := opCtx()
	defer cancel()
	entries, err := led.History(ctx, limit)
	if err != nil {
		return wrapLedgerErr(err)
	}

	if asJSON {
		return WriteJSONSuccess(os.Stdout, entries)
	}

	if len(entries) == 0 {
		fmt.Println("No recorded alerts")
		return nil
	}
	printEntries(entries)
	return nil
}

// openConfiguredLedger loads the config to locate the state directory and
// opens the episode database there.
func openConfiguredLedger() (*ledger.Ledger, error) {
	cfg, err := loadConfig(logger.NewEnvLogger("vitals"))
	if err != nil {
		return nil, err
	}
	return openLedger(cfg)
}

// printEntries renders episodes as a fixed-width table with short ids.
func printEntries(entries []ledger.Entry) {
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	fmt.Println(mutedStyle.Render(fmt.Sprintf("  %-8s  %-18s  %-8s  %-12s  %-10s  %s",
		"ID", "RULE", "LEVEL", "STATUS", "AGE", "MESSAGE")))
	for _, e := range entries {
		fmt.Printf("  %-8s  %-18s  %s  %-12s  %-10s  %s\n",
			shortID(e.ID),
			truncate(e.RuleID, 18),
			levelCell(e.Level),
			statusCell(e),
			formatAge(time.Since(e.CreatedAt)),
			e.Message)
	}
}

// levelCell pads the level to table width before styling; styling after
// padding keeps the escape codes out of the width math.
func levelCell(level string) string {
	padded := fmt.Sprintf("%-8s", level)
	switch level {
	case "critical":
		return lipgloss.NewStyle().Foreground(ui.ColorError).Render(padded)
	case "warning":
		return lipgloss.NewStyle().Foreground(ui.ColorWarning).Render(padded)
	default:
		return padded
	}
}

func statusCell(e ledger.Entry) string {
	if e.Status == ledger.StatusAcknowledged && e.AcknowledgedBy != "" {
		return "ack:" + truncate(e.AcknowledgedBy, 8)
	}
	return e.Status
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// formatAge renders a duration the way humans scan tables: one unit.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

func wrapLedgerErr(err error) error {
	if errors.IsCode(err, errors.ErrLedger) {
		return err
	}
	return errors.WrapWithCode(err, errors.ErrLedger,
		"Alert ledger query failed",
		"The database may be corrupt; 'vitals clean' or deleting it resets the ledger.")
}
