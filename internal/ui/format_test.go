package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		name   string
		bytes  float64
		expect string
	}{
		{name: "zero", bytes: 0, expect: "0 B"},
		{name: "below one KiB", bytes: 512, expect: "512 B"},
		{name: "exactly one KiB", bytes: 1024, expect: "1.0 KiB"},
		{name: "kibibytes", bytes: 4608, expect: "4.5 KiB"},
		{name: "mebibytes", bytes: 512 << 20, expect: "512.0 MiB"},
		{name: "gibibytes", bytes: 16.75 * 1024 * 1024 * 1024, expect: "16.8 GiB"},
		{name: "tebibytes", bytes: 2 << 40, expect: "2.0 TiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, HumanBytes(tt.bytes))
		})
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		expect  string
	}{
		{name: "seconds only", seconds: 45, expect: "45s"},
		{name: "minutes and seconds", seconds: 135, expect: "2m 15s"},
		{name: "hours and minutes", seconds: 8100, expect: "2h 15m"},
		{name: "days and hours", seconds: 93784, expect: "1d 2h"},
		{name: "exactly one day", seconds: 86400, expect: "1d 0h"},
		{name: "zero", seconds: 0, expect: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, HumanDuration(tt.seconds))
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		unit   string
		expect string
	}{
		{name: "percent", value: 42.52, unit: metrics.UnitPercent, expect: "42.5%"},
		{name: "bytes", value: 1536, unit: metrics.UnitBytes, expect: "1.5 KiB"},
		{name: "bytes per second", value: 2048, unit: metrics.UnitBytesPerSec, expect: "2.0 KiB/s"},
		{name: "per second", value: 0.5, unit: metrics.UnitPerSec, expect: "0.5/s"},
		{name: "count", value: 412, unit: metrics.UnitCount, expect: "412"},
		{name: "load", value: 1.5, unit: metrics.UnitLoad, expect: "1.50"},
		{name: "seconds", value: 90, unit: metrics.UnitSeconds, expect: "1m 30s"},
		{name: "unknown unit", value: 3.14159, unit: "radians", expect: "3.14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatValue(tt.value, tt.unit))
		})
	}
}
