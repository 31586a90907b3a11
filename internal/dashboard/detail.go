package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/ui"
	"github.com/rileyhilliard/vitals/internal/util"
)

// Detail view styles.
var (
	detailContainerStyle = lipgloss.NewStyle().
				Padding(0, 1)

	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1).
				MarginBottom(1)
)

// renderDetailView renders the pinned process. The pid stays pinned
// across refreshes; once it exits the view says so instead of silently
// jumping to another process.
func (m Model) renderDetailView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	contentWidth := m.width - 6
	if contentWidth < 40 {
		contentWidth = 40
	}

	p, alive := m.detailProcess()
	if !alive {
		b.WriteString(detailSectionStyle.Width(contentWidth).Render(
			LabelStyle.Render(fmt.Sprintf("Process %d has exited", m.detailPID))))
		b.WriteString("\n")
		b.WriteString(m.renderStatusLine())
		if m.ShowFooter() {
			b.WriteString("\n")
			b.WriteString(m.renderFooter())
		}
		return detailContainerStyle.Render(b.String())
	}

	b.WriteString(m.renderDetailTitle(p))
	b.WriteString("\n\n")

	b.WriteString(m.renderDetailUsage(p, contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderDetailIdentity(p, contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderDetailCommand(p, contentWidth))
	b.WriteString("\n")

	b.WriteString(m.renderStatusLine())
	if m.ShowFooter() {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	return detailContainerStyle.Render(b.String())
}

// renderDetailTitle shows the process name and pid prominently.
func (m Model) renderDetailTitle(p metrics.ProcessInfo) string {
	name := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(p.Name)
	return fmt.Sprintf("%s  %s", name, MutedStyle.Render(fmt.Sprintf("pid %d", p.PID)))
}

// renderDetailUsage shows CPU, memory and RSS with gauge bars.
func (m Model) renderDetailUsage(p metrics.ProcessInfo, width int) string {
	inner := width - 4
	barWidth := inner - 14
	if barWidth < cardMinGraphWidth {
		barWidth = cardMinGraphWidth
	}

	rules := m.provider.Rules()
	cpuWarn, cpuCrit := thresholdsFor(rules, metrics.KeyCPUUsage)
	memWarn, memCrit := thresholdsFor(rules, metrics.KeyMemUsed)

	cpuVal := lipgloss.NewStyle().
		Foreground(MetricColorWithThresholds(p.CPUPercent, cpuWarn, cpuCrit)).
		Render(fmt.Sprintf("%5.1f%%", p.CPUPercent))
	memVal := lipgloss.NewStyle().
		Foreground(MetricColorWithThresholds(p.MemPercent, memWarn, memCrit)).
		Render(fmt.Sprintf("%5.1f%%", p.MemPercent))

	lines := []string{
		LabelStyle.Render("CPU ") + " " + cpuVal + " " + RenderGradientBar(barWidth, p.CPUPercent, cpuWarn, cpuCrit),
		LabelStyle.Render("MEM ") + " " + memVal + " " + RenderGradientBar(barWidth, p.MemPercent, memWarn, memCrit),
		LabelStyle.Render("RSS ") + " " + ValueStyle.Render(ui.HumanBytes(float64(p.RSSBytes))),
	}
	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderDetailIdentity shows the stable process attributes.
func (m Model) renderDetailIdentity(p metrics.ProcessInfo, width int) string {
	lines := []string{
		LabelStyle.Render("user    ") + ValueStyle.Render(p.User),
		LabelStyle.Render("state   ") + ValueStyle.Render(stateLabel(p.State)),
		LabelStyle.Render("threads ") + ValueStyle.Render(util.Itoa(p.Threads)),
	}
	return detailSectionStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderDetailCommand shows the full command line, wrapped.
func (m Model) renderDetailCommand(p metrics.ProcessInfo, width int) string {
	cmd := p.Command
	if cmd == "" {
		cmd = p.Name
	}
	wrapped := wrapText(cmd, width-4)
	return detailSectionStyle.Width(width).Render(
		LabelStyle.Render("command") + "\n" + ValueStyle.Render(wrapped))
}

// stateLabel expands the /proc single-letter state codes.
func stateLabel(state string) string {
	switch state {
	case "R":
		return "R (running)"
	case "S":
		return "S (sleeping)"
	case "D":
		return "D (disk wait)"
	case "Z":
		return "Z (zombie)"
	case "T":
		return "T (stopped)"
	case "I":
		return "I (idle)"
	default:
		return state
	}
}

// wrapText wraps s at word boundaries to fit width columns.
func wrapText(s string, width int) string {
	if width < 1 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}
