package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding is one row of the help overlay.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings lists every shortcut with fuller descriptions than the
// footer has room for.
var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Sample now instead of waiting for the tick"},
	{Key: "s", Desc: "Cycle process sort: cpu, mem, pid, name"},
	{Key: "up / k", Desc: "Select previous row"},
	{Key: "down / j", Desc: "Select next row"},
	{Key: "g / G", Desc: "Jump to first / last row"},
	{Key: "Enter", Desc: "Open process detail (ack in alerts view)"},
	{Key: "x", Desc: "Terminate selected process (SIGTERM)"},
	{Key: "X", Desc: "Kill selected process (SIGKILL)"},
	{Key: "+ / -", Desc: "Renice selected process"},
	{Key: "a", Desc: "Toggle alerts view"},
	{Key: "e", Desc: "Export snapshot and history to JSON"},
	{Key: "Esc", Desc: "Back / dismiss"},
	{Key: "?", Desc: "Toggle this help"},
}

// Help overlay styles.
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelp renders the centered shortcut overlay.
func (m Model) renderHelp() string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}

	lines = append(lines, "")
	lines = append(lines, LabelStyle.Render("Press ? to close"))

	box := helpBoxStyle.Render(strings.Join(lines, "\n"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
