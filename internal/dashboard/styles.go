package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/vitals/internal/alerting"
)

// Dashboard color palette - dark surface with neon accents.
const (
	// Background colors
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for metrics - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Graph color for non-percentage series (network rates)
	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

// Fallback thresholds for metric coloring when no alert rule covers a
// metric key.
const (
	DefaultWarnThreshold = 70.0
	DefaultCritThreshold = 90.0
)

// Base styles for the dashboard.
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	ConfirmStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)
)

// LevelColor maps an alert level to its display color.
func LevelColor(level string) lipgloss.Color {
	switch level {
	case alerting.LevelCritical:
		return ColorCritical
	case alerting.LevelError:
		return ColorCritical
	case alerting.LevelWarning:
		return ColorWarning
	case alerting.LevelInfo:
		return ColorAccentDim
	default:
		return ColorTextSecondary
	}
}

// LevelStyle returns a style rendering text in the level's color.
func LevelStyle(level string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(level))
}

// MetricColorWithThresholds colors a percentage green below warning,
// amber from warning to critical, red at critical and above.
func MetricColorWithThresholds(percent, warning, critical float64) lipgloss.Color {
	switch {
	case percent >= critical:
		return ColorCritical
	case percent >= warning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricColor colors a percentage using the fallback thresholds.
func MetricColor(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, DefaultWarnThreshold, DefaultCritThreshold)
}

// thresholdsFor derives the warning and critical cutoffs for a metric
// key from the configured alert rules, so gauge coloring changes exactly
// where alerts would fire. Warning/error rules set the amber cutoff,
// critical rules the red one; multiple rules keep the lowest threshold.
// Metrics without matching upper-bound rules keep the fallbacks.
func thresholdsFor(rules []alerting.Rule, key string) (warn, crit float64) {
	warn, crit = DefaultWarnThreshold, DefaultCritThreshold
	haveWarn, haveCrit := false, false
	for _, r := range rules {
		if r.MetricKey != key || r.Disabled {
			continue
		}
		// Only upper-bound comparators translate to gauge cutoffs.
		if r.Comparator != alerting.CompGT && r.Comparator != alerting.CompGE {
			continue
		}
		switch r.Level {
		case alerting.LevelWarning, alerting.LevelError:
			if !haveWarn || r.Threshold < warn {
				warn = r.Threshold
				haveWarn = true
			}
		case alerting.LevelCritical:
			if !haveCrit || r.Threshold < crit {
				crit = r.Threshold
				haveCrit = true
			}
		}
	}
	if warn > crit {
		warn = crit
	}
	return warn, crit
}
