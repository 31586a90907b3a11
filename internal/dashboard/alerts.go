package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/alerting"
	"github.com/rileyhilliard/vitals/internal/util"
)

// recentEventCount is how many past events the alerts view lists under
// the active section.
const recentEventCount = 8

var alertSectionTitle = lipgloss.NewStyle().
	Foreground(ColorTextSecondary).
	Bold(true)

// renderAlertsView lists firing alerts with a selection cursor and the
// recent event history. Enter acknowledges the selected alert in the
// ledger; the engine keeps firing until the metric actually recovers.
func (m Model) renderAlertsView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	active := m.provider.ActiveAlerts()
	title := fmt.Sprintf("ACTIVE %s (%d)",
		strings.ToUpper(util.Pluralize(len(active), "alert", "alerts")), len(active))
	b.WriteString(" " + alertSectionTitle.Render(title))
	b.WriteString("\n")

	if len(active) == 0 {
		b.WriteString(MutedStyle.Render("   nothing firing"))
		b.WriteString("\n")
	} else {
		for i, ev := range active {
			b.WriteString(m.renderActiveAlertRow(ev, i == m.alertCursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(" " + alertSectionTitle.Render("RECENT EVENTS"))
	b.WriteString("\n")

	recent := m.provider.RecentEvents(recentEventCount)
	if len(recent) == 0 {
		b.WriteString(MutedStyle.Render("   none"))
		b.WriteString("\n")
	} else {
		for _, ev := range recent {
			b.WriteString(m.renderRecentEventRow(ev))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	if m.ShowFooter() {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	return b.String()
}

// renderActiveAlertRow renders one firing alert with its selection mark.
func (m Model) renderActiveAlertRow(ev alerting.Event, selected bool) string {
	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(ColorAccent).Render("▸ ")
	}

	level := LevelStyle(ev.Level).Bold(true).Render(fmt.Sprintf("%-8s", ev.Level))
	rule := ValueStyle.Render(fmt.Sprintf("%-16s", truncate(ev.RuleID, 16)))
	value := LevelStyle(ev.Level).Render(fmt.Sprintf("%s %.1f (threshold %.1f)", ev.MetricKey, ev.Value, ev.Threshold))
	since := MutedStyle.Render("  since " + ev.Timestamp.Format("15:04:05"))
	id := MutedStyle.Render("  [" + shortID(ev.ID) + "]")

	return " " + cursor + level + " " + rule + " " + value + since + id
}

// renderRecentEventRow renders one history line, newest first.
func (m Model) renderRecentEventRow(ev alerting.Event) string {
	ts := MutedStyle.Render(ev.Timestamp.Format("15:04:05"))

	var kind string
	if ev.Resolved() {
		kind = lipgloss.NewStyle().Foreground(ColorHealthy).Render("resolved")
	} else {
		kind = LevelStyle(ev.Level).Render("firing  ")
	}

	return fmt.Sprintf("   %s  %s  %s  %s",
		ts, kind, ValueStyle.Render(ev.RuleID), MutedStyle.Render(ev.Message))
}
