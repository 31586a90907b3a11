package ui

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// HumanBytes renders a byte count with a binary-prefix unit, e.g.
// "15.6 GiB". Values below 1 KiB print as plain bytes.
func HumanBytes(b float64) string {
	const unit = 1024.0
	if b < unit {
		return fmt.Sprintf("%.0f B", b)
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	v := b
	for _, s := range suffixes {
		v /= unit
		if v < unit {
			return fmt.Sprintf("%.1f %s", v, s)
		}
	}
	return fmt.Sprintf("%.1f EiB", v/unit)
}

// HumanDuration renders seconds as the two largest units, the way
// uptimes are usually read: "3d 4h", "2h 15m", "45s".
func HumanDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d >= 24*time.Hour:
		days := int(d.Hours()) / 24
		hours := int(d.Hours()) % 24
		return fmt.Sprintf("%dd %dh", days, hours)
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// FormatValue renders a metric value according to its unit.
func FormatValue(value float64, unit string) string {
	switch unit {
	case metrics.UnitPercent:
		return fmt.Sprintf("%.1f%%", value)
	case metrics.UnitBytes:
		return HumanBytes(value)
	case metrics.UnitBytesPerSec:
		return HumanBytes(value) + "/s"
	case metrics.UnitPerSec:
		return fmt.Sprintf("%.1f/s", value)
	case metrics.UnitCount:
		return fmt.Sprintf("%.0f", value)
	case metrics.UnitLoad:
		return fmt.Sprintf("%.2f", value)
	case metrics.UnitSeconds:
		return HumanDuration(value)
	default:
		return fmt.Sprintf("%.2f", value)
	}
}
