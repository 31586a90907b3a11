package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// Card layout constants.
const (
	cardGraphHeight   = 2  // braille graph rows in the full layout
	cardMinGraphWidth = 10 // narrowest graph worth drawing

	// Total card heights including borders, used by the table budget.
	cardHeightFull    = 6 // header + 2 graph rows + subline + borders
	cardHeightCompact = 4 // header + 1 graph row + borders
)

// cardDividerStyle draws thin separators with the card background.
var cardDividerStyle = lipgloss.NewStyle().
	Foreground(ColorBorder).
	Background(ColorSurfaceBg)

// renderCardDivider returns a thin horizontal rule.
func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// renderCardLine pads content to width with the card background applied
// to the whole line, padding included.
func renderCardLine(content string, width int) string {
	contentWidth := lipgloss.Width(content)
	padding := ""
	if width > contentWidth {
		padding = strings.Repeat(" ", width-contentWidth)
	}
	return lipgloss.NewStyle().Background(ColorSurfaceBg).Render(content + padding)
}

// labelRight lays out a left label and right-aligned value on one line.
func labelRight(label, right string, width int) string {
	pad := ""
	if gap := width - lipgloss.Width(label) - lipgloss.Width(right); gap > 0 {
		pad = strings.Repeat(" ", gap)
	}
	return label + pad + right
}

// renderCards renders the gauge card row: CPU, MEM, DISK, NET.
func (m Model) renderCards() string {
	graphRows := cardGraphHeight
	withSub := true
	if m.LayoutMode() == LayoutCompact {
		graphRows = 1
		withSub = false
	}

	// Four cards share the row; border eats 2 columns and the margin 1.
	cardWidth := (m.width / 4) - 3
	if cardWidth < 16 {
		cardWidth = 16
	}

	cards := []string{
		m.renderGaugeCard("CPU", metrics.KeyCPUUsage, m.cpuSubline(), cardWidth, graphRows, withSub),
		m.renderGaugeCard("MEM", metrics.KeyMemUsed, m.memSubline(), cardWidth, graphRows, withSub),
		m.renderGaugeCard("DISK", metrics.KeyDiskUsed, m.diskSubline(), cardWidth, graphRows, withSub),
		m.renderNetCard(cardWidth, graphRows, withSub),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderGaugeCard renders one percentage metric as a card: title with
// the current value, a history graph, and an optional subline. Coloring
// follows the alert thresholds for the metric's key, so the gauge turns
// amber exactly where a warning rule would start breaching.
func (m Model) renderGaugeCard(title, key, subline string, width, graphRows int, withSub bool) string {
	innerWidth := width - 2
	if innerWidth < cardMinGraphWidth {
		innerWidth = cardMinGraphWidth
	}

	warn, crit := thresholdsFor(m.provider.Rules(), key)
	colorFor := func(v float64) lipgloss.Color {
		return MetricColorWithThresholds(v, warn, crit)
	}

	pct, ok := m.snap.Value(key)

	var lines []string

	label := LabelStyle.Render(title)
	var pctText string
	if ok {
		pctText = lipgloss.NewStyle().Foreground(colorFor(pct)).Render(fmt.Sprintf("%5.1f%%", pct))
	} else {
		pctText = MutedStyle.Render("  n/a")
	}
	lines = append(lines, renderCardLine(labelRight(label, pctText, innerWidth), innerWidth))

	history := m.provider.Values(key, innerWidth*2)
	switch {
	case len(history) > 1:
		graph := RenderBrailleSparkline(history, innerWidth, graphRows, ColorGraph, colorFor)
		for _, gl := range strings.Split(graph, "\n") {
			lines = append(lines, renderCardLine(gl, innerWidth))
		}
	case ok:
		// One sample: draw the gauge bar until history accumulates.
		lines = append(lines, renderCardLine(RenderGradientBar(innerWidth, pct, warn, crit), innerWidth))
		for i := 1; i < graphRows; i++ {
			lines = append(lines, renderCardLine("", innerWidth))
		}
	default:
		for i := 0; i < graphRows; i++ {
			lines = append(lines, renderCardLine("", innerWidth))
		}
	}

	if withSub {
		lines = append(lines, renderCardLine(MutedStyle.Render(subline), innerWidth))
	}

	return CardStyle.Width(innerWidth + 2).Render(strings.Join(lines, "\n"))
}

// renderNetCard renders network throughput. Rates aren't percentages,
// so the graph keeps the base color and scales to the observed peak.
func (m Model) renderNetCard(width, graphRows int, withSub bool) string {
	innerWidth := width - 2
	if innerWidth < cardMinGraphWidth {
		innerWidth = cardMinGraphWidth
	}

	rx, rxOK := m.snap.Value(metrics.KeyNetRxBps)
	tx, txOK := m.snap.Value(metrics.KeyNetTxBps)

	var lines []string

	label := LabelStyle.Render("NET")
	var right string
	if rxOK || txOK {
		down := lipgloss.NewStyle().Foreground(ColorAccent).Render("↓")
		up := lipgloss.NewStyle().Foreground(ColorAccent).Render("↑")
		right = down + ValueStyle.Render(compactRate(rx)) + " " + up + ValueStyle.Render(compactRate(tx))
	} else {
		right = MutedStyle.Render("n/a")
	}
	lines = append(lines, renderCardLine(labelRight(label, right, innerWidth), innerWidth))

	history := m.provider.Values(metrics.KeyNetRxBps, innerWidth*2)
	if len(history) > 1 {
		graph := RenderBrailleSparkline(history, innerWidth, graphRows, ColorGraph, nil)
		for _, gl := range strings.Split(graph, "\n") {
			lines = append(lines, renderCardLine(gl, innerWidth))
		}
	} else {
		for i := 0; i < graphRows; i++ {
			lines = append(lines, renderCardLine("", innerWidth))
		}
	}

	if withSub {
		sub := ""
		if errRate, ok := m.snap.Value(metrics.KeyNetErrs); ok && errRate > 0 {
			sub = lipgloss.NewStyle().Foreground(ColorWarning).Render(fmt.Sprintf("errs %.1f/s", errRate))
		} else if rxOK {
			sub = MutedStyle.Render("errs 0.0/s")
		}
		lines = append(lines, renderCardLine(sub, innerWidth))
	}

	return CardStyle.Width(innerWidth + 2).Render(strings.Join(lines, "\n"))
}

// cpuSubline shows the load averages under the CPU gauge.
func (m Model) cpuSubline() string {
	l1, ok1 := m.snap.Value(metrics.KeyLoad1)
	l5, ok5 := m.snap.Value(metrics.KeyLoad5)
	l15, ok15 := m.snap.Value(metrics.KeyLoad15)
	if !ok1 || !ok5 || !ok15 {
		return ""
	}
	return fmt.Sprintf("load %.2f %.2f %.2f", l1, l5, l15)
}

// memSubline shows used/total under the memory gauge.
func (m Model) memSubline() string {
	used, okU := m.snap.Value(metrics.KeyMemUsedB)
	total, okT := m.snap.Value(metrics.KeyMemTotalB)
	if !okU || !okT {
		return ""
	}
	return ui.HumanBytes(used) + " / " + ui.HumanBytes(total)
}

// diskSubline shows used/total under the disk gauge.
func (m Model) diskSubline() string {
	used, okU := m.snap.Value(metrics.KeyDiskUsedB)
	total, okT := m.snap.Value(metrics.KeyDiskTotB)
	if !okU || !okT {
		return ""
	}
	return ui.HumanBytes(used) + " / " + ui.HumanBytes(total)
}

// compactRate renders a byte rate tight enough for a card header,
// "15.6 GiB" becoming "15.6G/s".
func compactRate(bps float64) string {
	s := ui.HumanBytes(bps)
	s = strings.TrimSuffix(s, "iB")
	s = strings.ReplaceAll(s, " ", "")
	return s + "/s"
}
