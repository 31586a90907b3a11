package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline rendering. The full layout draws history with braille
// characters: each cell is a 2x4 dot matrix, so one character carries
// two data points at four vertical levels. Unicode braille starts at
// U+2800 with one bit per dot: bits 0-2 are column 0 rows 0-2, bits 3-5
// column 1 rows 0-2, bits 6-7 the bottom row.

const brailleBase = '⠀'

// brailleDots maps [row][col] to the dot's bit offset, row 0 at the top.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// sparklineBlocks are the single-row fallback glyphs, lowest to highest.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// findMinMax returns the plot range for a series. Percentage-shaped data
// (everything within 0-100) gets the fixed 0-100 range so the graph
// doesn't rescale between frames; anything else scales to the observed
// extremes.
func findMinMax(data []float64) (minVal, maxVal float64, isPercentage bool) {
	if len(data) == 0 {
		return 0, 100, true
	}
	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	isPercentage = maxVal <= 100 && minVal >= 0
	if isPercentage {
		minVal = 0
		maxVal = 100
	}
	return minVal, maxVal, isPercentage
}

// normalizeValue converts a value to the 0-1 range given plot bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps val to [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// RenderBrailleSparkline plots a series as a braille graph of the given
// character width and row height. Columns are colored by their peak
// value through colorFor; a nil colorFor keeps baseColor throughout
// (used for rate series like network throughput, where thresholds don't
// apply). Series shorter than the width are right-aligned so the newest
// sample always sits at the right edge.
func RenderBrailleSparkline(data []float64, width, height int, baseColor lipgloss.Color, colorFor func(float64) lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal, isPercentage := findMinMax(data)
	totalDots := height * 4
	targetPoints := width * 2

	// Downsample only when the series is wider than the plot; a short
	// series is drawn as-is and fills from the right.
	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	// Peak per character column drives that column's color.
	colMax := make([]float64, width)

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		dotHeight := clampInt(int(normalized*float64(totalDots)), totalDots)

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		if val > colMax[charCol] {
			colMax[charCol] = val
		}
		subCol := (i + horizOffset) % 2

		// Fill dots bottom-up.
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			if row < 0 {
				continue
			}
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	var lines []string
	for _, row := range grid {
		var b strings.Builder
		for col, char := range row {
			color := baseColor
			if colorFor != nil && isPercentage {
				color = colorFor(colMax[col])
			}
			style := lipgloss.NewStyle().Foreground(color).Background(ColorSurfaceBg)
			b.WriteString(style.Render(string(char)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// RenderBlockSparkline plots a series as a single row of block glyphs,
// the compact-layout stand-in for the braille graph.
func RenderBlockSparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal, _ := findMinMax(data)
	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var b strings.Builder
	// Right-align short series like the braille plot does.
	for i := len(resampled); i < width; i++ {
		b.WriteRune(' ')
	}
	for _, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		b.WriteRune(sparklineBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

// RenderGradientBar draws a horizontal gauge. Filled cells are colored
// by the percentage they represent against the warn/crit cutoffs, so
// the bar shades green through amber to red as it fills.
func RenderGradientBar(width int, percent, warn, crit float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i+1) / float64(width) * 100
			color := MetricColorWithThresholds(pos, warn, crit)
			b.WriteString(lipgloss.NewStyle().Foreground(color).Background(ColorSurfaceBg).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).Background(ColorSurfaceBg).Render("░"))
		}
	}
	return b.String()
}

// resampleData fits a series to targetSize points. Downsampling keeps
// the max of each bucket so short spikes stay visible; upsampling
// interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}
			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}
