package sampler

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// netCounters holds cumulative totals across all non-loopback interfaces
// from /proc/net/dev, along with when they were read.
type netCounters struct {
	rxBytes uint64
	txBytes uint64
	errs    uint64
	at      time.Time
}

// sampleNetwork emits net.rx_bps, net.tx_bps, and net.err_per_sec as rates
// computed from the counter delta since the previous call. The first call
// has no baseline and reports zero rates. Negative deltas (counter reset,
// e.g. an interface bounced) clamp to zero.
func (s *Sampler) sampleNetwork(_ context.Context, ts time.Time, res *Result) error {
	cur, err := s.readNetCounters(ts)
	if err != nil {
		return err
	}

	var rxRate, txRate, errRate float64
	if s.prevNet != nil {
		elapsed := cur.at.Sub(s.prevNet.at).Seconds()
		if elapsed > 0 {
			rxRate = rateDelta(cur.rxBytes, s.prevNet.rxBytes, elapsed)
			txRate = rateDelta(cur.txBytes, s.prevNet.txBytes, elapsed)
			errRate = rateDelta(cur.errs, s.prevNet.errs, elapsed)
		}
	}
	s.prevNet = &cur

	s.add(res, ts, metrics.KeyNetRxBps, rxRate, metrics.UnitBytesPerSec)
	s.add(res, ts, metrics.KeyNetTxBps, txRate, metrics.UnitBytesPerSec)
	s.add(res, ts, metrics.KeyNetErrs, errRate, metrics.UnitPerSec)

	return nil
}

func rateDelta(cur, prev uint64, elapsed float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / elapsed
}

// readNetCounters sums /proc/net/dev across interfaces, skipping loopback.
// Receive fields: bytes packets errs drop ...; transmit starts at field 8.
func (s *Sampler) readNetCounters(ts time.Time) (netCounters, error) {
	f, err := os.Open(filepath.Join(s.procRoot, "net", "dev"))
	if err != nil {
		return netCounters{}, err
	}
	defer f.Close()

	totals := netCounters{at: ts}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.TrimSpace(parts[0]) == "lo" {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) < 16 {
			continue
		}

		rx, _ := strconv.ParseUint(fields[0], 10, 64)
		rxErr, _ := strconv.ParseUint(fields[2], 10, 64)
		tx, _ := strconv.ParseUint(fields[8], 10, 64)
		txErr, _ := strconv.ParseUint(fields[10], 10, 64)

		totals.rxBytes += rx
		totals.txBytes += tx
		totals.errs += rxErr + txErr
	}
	if err := scanner.Err(); err != nil {
		return netCounters{}, err
	}
	return totals, nil
}
