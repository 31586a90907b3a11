package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/ui"
	"github.com/rileyhilliard/vitals/internal/util"
)

// render assembles the current frame.
func (m Model) render() string {
	if m.showHelp {
		return m.renderHelp()
	}

	switch m.viewMode {
	case ViewDetail:
		return m.renderDetailView()
	case ViewAlerts:
		return m.renderAlertsView()
	}
	return m.renderDashboardView()
}

// renderDashboardView is the main screen: header, gauge cards, process
// table, alert strip, status line, footer.
func (m Model) renderDashboardView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.waiting {
		b.WriteString(m.renderWaiting())
		b.WriteString("\n")
		if m.ShowFooter() {
			b.WriteString("\n")
			b.WriteString(m.renderFooter())
		}
		return b.String()
	}

	if m.LayoutMode() == LayoutMinimal {
		b.WriteString(m.renderMinimalSummary())
	} else {
		b.WriteString(m.renderCards())
		b.WriteString("\n")
		b.WriteString(m.procTable.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderAlertStrip())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	if m.ShowFooter() {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	return b.String()
}

// renderHeader shows the host, uptime, and collection status.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("vitals")
	if m.version != "" {
		title += MutedStyle.Render(" " + m.version)
	}

	parts := []string{"host " + hostname()}
	if up, ok := m.snap.Value(metrics.KeyUptime); ok {
		parts = append(parts, "up "+ui.HumanDuration(up))
	}
	if n, ok := m.snap.Value(metrics.KeyProcCount); ok {
		parts = append(parts, fmt.Sprintf("%.0f procs", n))
	}
	if !m.waiting {
		age := int(m.sampleAge().Seconds())
		var ageText string
		switch {
		case age <= 0:
			ageText = "just now"
		case age == 1:
			ageText = "1s ago"
		default:
			ageText = fmt.Sprintf("%ds ago", age)
		}
		parts = append(parts, fmt.Sprintf("tick #%d %s", m.provider.TickCount(), ageText))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	header := title + stats
	if m.snap != nil && m.snap.Partial {
		header += lipgloss.NewStyle().Foreground(ColorWarning).Render(" | partial sample")
	}
	return HeaderStyle.Render(header)
}

// renderWaiting is shown until the collection loop publishes its first
// snapshot.
func (m Model) renderWaiting() string {
	return "  " + m.spin.View() + LabelStyle.Render(
		fmt.Sprintf(" waiting for first sample (sampling every %s)...", m.provider.Interval()))
}

// renderMinimalSummary is the card-less layout for narrow terminals:
// one line per metric family.
func (m Model) renderMinimalSummary() string {
	rules := m.provider.Rules()
	var lines []string

	row := func(label, key string) string {
		pct, ok := m.snap.Value(key)
		if !ok {
			return LabelStyle.Render(label) + "  " + MutedStyle.Render("n/a")
		}
		warn, crit := thresholdsFor(rules, key)
		val := lipgloss.NewStyle().
			Foreground(MetricColorWithThresholds(pct, warn, crit)).
			Render(fmt.Sprintf("%5.1f%%", pct))
		return LabelStyle.Render(label) + " " + val
	}

	lines = append(lines, row("CPU ", metrics.KeyCPUUsage))
	lines = append(lines, row("MEM ", metrics.KeyMemUsed))
	lines = append(lines, row("DISK", metrics.KeyDiskUsed))

	rx, rxOK := m.snap.Value(metrics.KeyNetRxBps)
	tx, txOK := m.snap.Value(metrics.KeyNetTxBps)
	if rxOK || txOK {
		lines = append(lines, LabelStyle.Render("NET ")+" "+
			ValueStyle.Render("↓"+compactRate(rx)+" ↑"+compactRate(tx)))
	}

	return strings.Join(lines, "\n")
}

// renderAlertStrip is the one-line alert summary under the table.
func (m Model) renderAlertStrip() string {
	active := m.provider.ActiveAlerts()
	if len(active) == 0 {
		return MutedStyle.Render(" ● no active alerts")
	}

	top := active[0]
	for _, ev := range active {
		if levelRank(ev.Level) > levelRank(top.Level) {
			top = ev
		}
	}

	count := LevelStyle(top.Level).Bold(true).Render(
		fmt.Sprintf(" ▲ %d active %s", len(active), util.Pluralize(len(active), "alert", "alerts")))
	return count + MutedStyle.Render(": "+top.Message)
}

// renderStatusLine shows a pending confirmation or the last transient
// status. Confirmations win; nothing else renders while one is open.
func (m Model) renderStatusLine() string {
	if m.confirm != nil {
		sig := "SIGTERM"
		if m.confirm.force {
			sig = "SIGKILL"
		}
		return ConfirmStyle.Render(
			fmt.Sprintf(" Send %s to %s (pid %d)? [y/n]", sig, m.confirm.name, m.confirm.pid))
	}
	if m.status.text == "" {
		return ""
	}
	if m.status.isError {
		return StatusErrorStyle.Render(" ✗ " + m.status.text)
	}
	return StatusInfoStyle.Render(" " + m.status.text)
}

// renderFooter lists the keys that matter in the current view.
func (m Model) renderFooter() string {
	var hints []string
	switch m.viewMode {
	case ViewDetail:
		hints = []string{
			hint(m.keys.Back),
			hint(m.keys.Kill),
			hint(m.keys.KillHard),
			hint(m.keys.NiceUp),
			hint(m.keys.NiceDown),
			hint(m.keys.Quit),
		}
	case ViewAlerts:
		hints = []string{
			hint(m.keys.Back),
			hint(m.keys.Up),
			hint(m.keys.Down),
			"enter ack",
			hint(m.keys.Quit),
		}
	default:
		hints = []string{
			hint(m.keys.Quit),
			hint(m.keys.Refresh),
			"s sort: " + m.sortOrder.String(),
			hint(m.keys.Select),
			hint(m.keys.Kill),
			hint(m.keys.Alerts),
			hint(m.keys.Export),
			hint(m.keys.Help),
		}
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// hint formats one key binding for the footer.
func hint(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}

// levelRank orders severity levels for picking the worst active alert.
func levelRank(level string) int {
	switch level {
	case alerting.LevelCritical:
		return 3
	case alerting.LevelError:
		return 2
	case alerting.LevelWarning:
		return 1
	default:
		return 0
	}
}
