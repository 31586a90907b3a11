package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/vitals/internal/ui"
)

// cleanCommand prunes resolved episodes older than the retention window.
func cleanCommand(olderThan time.Duration, dryRun, yes bool) error {
	led, err := openConfiguredLedger()
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, cancel := opCtx()
	defer cancel()

	count, err := led.CountPrunable(ctx, olderThan)
	if err != nil {
		return wrapLedgerErr(err)
	}
	if count == 0 {
		fmt.Printf("%s No resolved alerts older than %s\n", ui.SymbolSuccess, olderThan)
		return nil
	}

	if dryRun {
		fmt.Printf("%s Dry run: would prune %d resolved alert%s older than %s\n",
			ui.SymbolPending, count, pluralSuffix(count), olderThan)
		return nil
	}

	if !yes {
		var confirm bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Prune %d resolved alert%s older than %s?",
						count, pluralSuffix(count), olderThan)).
					Description("This cannot be undone").
					Value(&confirm),
			),
		)
		if err := form.Run(); err != nil {
			return nil
		}
		if !confirm {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	removed, err := led.Prune(ctx, olderThan)
	if err != nil {
		return wrapLedgerErr(err)
	}

	fmt.Printf("%s Pruned %d resolved alert%s\n", ui.SymbolSuccess, removed, pluralSuffix(removed))
	return nil
}

// pluralSuffix returns "s" if n != 1.
func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
