package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// rateWarmup separates the two reads a one-shot snapshot takes so delta
// metrics (CPU usage, network throughput) cover a real window.
const rateWarmup = 250 * time.Millisecond

// snapshotCommand collects one snapshot and prints it.
func snapshotCommand(asJSON bool) error {
	log := logger.NewEnvLogger("vitals")
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	smp := newSampler(cfg, log)
	if err := smp.Check(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SampleTimeout)
	if _, err := smp.Sample(ctx); err != nil {
		cancel()
		return err
	}
	cancel()

	time.Sleep(rateWarmup)

	ctx, cancel = context.WithTimeout(context.Background(), cfg.SampleTimeout)
	defer cancel()
	res, err := smp.Sample(ctx)
	if err != nil {
		return err
	}

	snap := &metrics.Snapshot{
		Timestamp: time.Now(),
		Samples:   make(map[string]metrics.Sample, len(res.Samples)),
		Processes: res.Processes,
		Partial:   len(res.Errs) > 0,
		Errs:      res.Errs,
	}
	for _, sm := range res.Samples {
		snap.Samples[sm.Key] = sm
	}

	if asJSON {
		return WriteJSONSuccess(os.Stdout, snap)
	}
	printSnapshot(snap)
	return nil
}

// printSnapshot renders the snapshot as grouped key/value sections plus
// the top of the process table.
func printSnapshot(snap *metrics.Snapshot) {
	headerStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)

	fmt.Printf("%s %s\n\n",
		headerStyle.Render("vitals snapshot"),
		mutedStyle.Render(snap.Timestamp.Format("2006-01-02 15:04:05")))

	sections := []struct {
		title  string
		prefix []string
	}{
		{"HOST", []string{"host."}},
		{"CPU", []string{"cpu."}},
		{"MEMORY", []string{"mem.", "swap."}},
		{"DISK", []string{"disk."}},
		{"NETWORK", []string{"net."}},
		{"PROCESSES", []string{"proc."}},
	}

	keys := make([]string, 0, len(snap.Samples))
	for k := range snap.Samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	for _, sec := range sections {
		var rows []string
		for _, k := range keys {
			if !hasAnyPrefix(k, sec.prefix) || metrics.IsPerProcess(k) {
				continue
			}
			sm := snap.Samples[k]
			rows = append(rows, fmt.Sprintf("  %-*s  %s", width, k, ui.FormatValue(sm.Value, sm.Unit)))
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Println(headerStyle.Render(sec.title))
		for _, row := range rows {
			fmt.Println(row)
		}
		fmt.Println()
	}

	if len(snap.Processes) > 0 {
		fmt.Println(headerStyle.Render("TOP PROCESSES"))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("  %7s  %-10s  %6s  %6s  %9s  %s",
			"PID", "USER", "CPU%", "MEM%", "RSS", "NAME")))
		top := snap.Processes
		if len(top) > 10 {
			top = top[:10]
		}
		for _, p := range top {
			fmt.Printf("  %7d  %-10s  %5.1f%%  %5.1f%%  %9s  %s\n",
				p.PID, truncate(p.User, 10), p.CPUPercent, p.MemPercent,
				ui.HumanBytes(float64(p.RSSBytes)), p.Name)
		}
		fmt.Println()
	}

	if snap.Partial {
		fmt.Printf("%s partial snapshot: %s\n",
			warnStyle.Render(ui.SymbolFail),
			strings.Join(snap.Errs, "; "))
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
