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

// sampleMemory emits mem.* and swap.used_pct from /proc/meminfo.
//
// mem.used_pct follows the kernel's availability estimate
// ((total-available)/total); mem.used_bytes is the classic
// total-free-buffers-cached so both readings line up with what free(1)
// reports.
func (s *Sampler) sampleMemory(_ context.Context, ts time.Time, res *Result) error {
	mi, err := s.readMeminfo()
	if err != nil {
		return err
	}
	if mi.total == 0 {
		return fmt.Errorf("meminfo reported zero MemTotal")
	}

	s.memTotalBytes = mi.total

	usedBytes := mi.total - mi.free - mi.buffers - mi.cached
	if usedBytes < 0 {
		usedBytes = 0
	}
	usedPct := float64(mi.total-mi.available) / float64(mi.total) * 100

	s.add(res, ts, metrics.KeyMemUsed, clampPct(usedPct), metrics.UnitPercent)
	s.add(res, ts, metrics.KeyMemUsedB, float64(usedBytes), metrics.UnitBytes)
	s.add(res, ts, metrics.KeyMemTotalB, float64(mi.total), metrics.UnitBytes)
	s.add(res, ts, metrics.KeyMemAvailB, float64(mi.available), metrics.UnitBytes)

	// Hosts without swap report 0% rather than omitting the key, so rules
	// on swap stay resolvable.
	swapPct := 0.0
	if mi.swapTotal > 0 {
		swapPct = float64(mi.swapTotal-mi.swapFree) / float64(mi.swapTotal) * 100
	}
	s.add(res, ts, metrics.KeySwapUsed, clampPct(swapPct), metrics.UnitPercent)

	return nil
}

type meminfo struct {
	total     int64
	free      int64
	available int64
	buffers   int64
	cached    int64
	swapTotal int64
	swapFree  int64
}

// readMeminfo parses /proc/meminfo. Values there are in kB.
func (s *Sampler) readMeminfo() (meminfo, error) {
	f, err := os.Open(filepath.Join(s.procRoot, "meminfo"))
	if err != nil {
		return meminfo{}, err
	}
	defer f.Close()

	var mi meminfo
	found := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		val, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		bytes := val * 1024

		switch strings.TrimSuffix(fields[0], ":") {
		case "MemTotal":
			mi.total = bytes
			found++
		case "MemFree":
			mi.free = bytes
			found++
		case "MemAvailable":
			mi.available = bytes
			found++
		case "Buffers":
			mi.buffers = bytes
		case "Cached":
			mi.cached = bytes
		case "SwapTotal":
			mi.swapTotal = bytes
		case "SwapFree":
			mi.swapFree = bytes
		}
	}
	if err := scanner.Err(); err != nil {
		return meminfo{}, err
	}
	if found < 3 {
		return meminfo{}, fmt.Errorf("insufficient fields in meminfo")
	}
	return mi, nil
}

// readMemTotal is the fallback for per-process memory percentages when the
// memory family is disabled and memTotalBytes was never populated.
func (s *Sampler) readMemTotal() int64 {
	if s.memTotalBytes > 0 {
		return s.memTotalBytes
	}
	mi, err := s.readMeminfo()
	if err != nil {
		return 0
	}
	s.memTotalBytes = mi.total
	return mi.total
}
