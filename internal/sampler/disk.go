package sampler

import (
	"context"
	"syscall"
	"time"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// sampleDisk emits disk.* for the configured filesystem path via statfs.
//
// Used percent is used/(used+available-to-users), matching df(1): blocks
// reserved for root are excluded from the denominator, so a filesystem can
// legitimately read 100% while Bfree is still nonzero.
func (s *Sampler) sampleDisk(_ context.Context, ts time.Time, res *Result) error {
	var st syscall.Statfs_t
	if err := syscall.Statfs(s.diskPath, &st); err != nil {
		return err
	}

	bsize := uint64(st.Bsize)
	total := st.Blocks * bsize
	used := (st.Blocks - st.Bfree) * bsize
	avail := st.Bavail * bsize

	pct := 0.0
	if used+avail > 0 {
		pct = float64(used) / float64(used+avail) * 100
	}

	s.add(res, ts, metrics.KeyDiskUsed, clampPct(pct), metrics.UnitPercent)
	s.add(res, ts, metrics.KeyDiskUsedB, float64(used), metrics.UnitBytes)
	s.add(res, ts, metrics.KeyDiskTotB, float64(total), metrics.UnitBytes)

	return nil
}
