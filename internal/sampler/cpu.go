package sampler

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// cpuTimes holds the aggregate jiffy counters from the "cpu " line of
// /proc/stat.
type cpuTimes struct {
	total uint64
	idle  uint64
}

// sampleCPU emits cpu.usage_pct plus the three load averages.
//
// Usage percent is computed from the jiffy delta between consecutive
// calls. The first call has no previous reading and falls back to the
// since-boot average, which is still meaningful for display.
func (s *Sampler) sampleCPU(_ context.Context, ts time.Time, res *Result) error {
	cur, err := s.readCPUTimes()
	if err != nil {
		return err
	}

	var pct float64
	if s.prevCPU != nil {
		dTotal := cur.total - s.prevCPU.total
		dIdle := cur.idle - s.prevCPU.idle
		if dTotal > 0 {
			pct = 100 * (1 - float64(dIdle)/float64(dTotal))
		}
	} else if cur.total > 0 {
		pct = 100 * (1 - float64(cur.idle)/float64(cur.total))
	}
	s.prevCPU = &cur

	s.add(res, ts, metrics.KeyCPUUsage, clampPct(pct), metrics.UnitPercent)

	// Load averages and uptime are best-effort: their absence degrades
	// the snapshot but does not fail the cpu family.
	if l1, l5, l15, err := s.readLoadAvg(); err == nil {
		s.add(res, ts, metrics.KeyLoad1, l1, metrics.UnitLoad)
		s.add(res, ts, metrics.KeyLoad5, l5, metrics.UnitLoad)
		s.add(res, ts, metrics.KeyLoad15, l15, metrics.UnitLoad)
	} else {
		s.log.Debug("loadavg unavailable: %v", err)
	}
	if up, err := s.readUptime(); err == nil {
		s.add(res, ts, metrics.KeyUptime, up, metrics.UnitSeconds)
	} else {
		s.log.Debug("uptime unavailable: %v", err)
	}

	return nil
}

// readUptime parses the first field of /proc/uptime, seconds since boot.
func (s *Sampler) readUptime() (float64, error) {
	data, err := os.ReadFile(filepath.Join(s.procRoot, "uptime"))
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("invalid uptime: %q", strings.TrimSpace(string(data)))
	}
	return strconv.ParseFloat(fields[0], 64)
}

// readCPUTimes parses the aggregate cpu line of /proc/stat.
// Fields: cpu user nice system idle iowait irq softirq steal guest guest_nice;
// idle time counts both idle and iowait.
func (s *Sampler) readCPUTimes() (cpuTimes, error) {
	f, err := os.Open(filepath.Join(s.procRoot, "stat"))
	if err != nil {
		return cpuTimes{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return cpuTimes{}, fmt.Errorf("invalid cpu line in stat: %q", line)
		}

		var t cpuTimes
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return cpuTimes{}, fmt.Errorf("parse cpu field %d: %w", i, err)
			}
			t.total += val
			if i == 4 || i == 5 {
				t.idle += val
			}
		}
		return t, nil
	}
	if err := scanner.Err(); err != nil {
		return cpuTimes{}, err
	}
	return cpuTimes{}, fmt.Errorf("no cpu line in %s/stat", s.procRoot)
}

// readLoadAvg parses the first three fields of /proc/loadavg.
func (s *Sampler) readLoadAvg() (l1, l5, l15 float64, err error) {
	data, err := os.ReadFile(filepath.Join(s.procRoot, "loadavg"))
	if err != nil {
		return 0, 0, 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("invalid loadavg: %q", strings.TrimSpace(string(data)))
	}
	if l1, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, 0, 0, err
	}
	if l5, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, 0, err
	}
	if l15, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return 0, 0, 0, err
	}
	return l1, l5, l15, nil
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
