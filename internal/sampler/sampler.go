// Package sampler reads host and per-process metrics from the local /proc
// filesystem and statfs. One Sampler instance is owned by the core's tick
// loop; Sample is not safe for concurrent use because rate calculations
// keep per-call delta state (previous CPU jiffies, network counters).
package sampler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
)

// Config controls which metric families are sampled and where they are
// read from. Families are opt-in; the config layer enables them all by
// default.
type Config struct {
	// ProcRoot is the procfs mount point. Overridable for tests.
	ProcRoot string
	// DiskPath is the filesystem path measured for disk usage.
	DiskPath string
	// ProcessLimit caps how many process rows are kept per snapshot,
	// ordered by CPU. Zero means no cap.
	ProcessLimit int

	CPU       bool
	Memory    bool
	Disk      bool
	Network   bool
	Processes bool

	Logger logger.Logger
}

// Result is the raw output of one sampling pass. Partial results are
// valid: a family that could not be read is reported in Errs and its
// samples are simply absent.
type Result struct {
	Samples   []metrics.Sample
	Processes []metrics.ProcessInfo
	Errs      []string
}

// Sampler reads OS counters and converts them to metric samples.
type Sampler struct {
	procRoot string
	diskPath string
	procCap  int

	cpu       bool
	memory    bool
	disk      bool
	network   bool
	processes bool

	log logger.Logger

	// Delta state between consecutive Sample calls.
	prevCPU  *cpuTimes
	prevNet  *netCounters
	prevProc map[int]procTimes

	// Pids whose permission failure has already been logged this session.
	denied map[int]bool

	// uid → username cache for the process table.
	users map[string]string

	pageSize      int64
	memTotalBytes int64

	// now is swappable so rate math is deterministic in tests.
	now func() time.Time
}

// New creates a Sampler. Missing config fields get defaults: /proc,
// disk path "/", noop logger.
func New(cfg Config) *Sampler {
	if cfg.ProcRoot == "" {
		cfg.ProcRoot = "/proc"
	}
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	return &Sampler{
		procRoot:  cfg.ProcRoot,
		diskPath:  cfg.DiskPath,
		procCap:   cfg.ProcessLimit,
		cpu:       cfg.CPU,
		memory:    cfg.Memory,
		disk:      cfg.Disk,
		network:   cfg.Network,
		processes: cfg.Processes,
		log:       cfg.Logger,
		prevProc:  make(map[int]procTimes),
		denied:    make(map[int]bool),
		users:     make(map[string]string),
		pageSize:  int64(os.Getpagesize()),
		now:       time.Now,
	}
}

// Sample reads every enabled metric family once. It returns an error only
// when every enabled family failed (a total sampling failure); otherwise
// failures degrade the result and are listed in Result.Errs.
func (s *Sampler) Sample(ctx context.Context) (*Result, error) {
	now := s.now()
	res := &Result{}

	families := []struct {
		name    string
		enabled bool
		fn      func(context.Context, time.Time, *Result) error
	}{
		{metrics.FamilyCPU, s.cpu, s.sampleCPU},
		{metrics.FamilyMemory, s.memory, s.sampleMemory},
		{metrics.FamilyDisk, s.disk, s.sampleDisk},
		{metrics.FamilyNetwork, s.network, s.sampleNetwork},
		{metrics.FamilyProcesses, s.processes, s.sampleProcesses},
	}

	attempted, failed := 0, 0
	for _, f := range families {
		if !f.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Errs = append(res.Errs, fmt.Sprintf("%s: %v", f.name, err))
			failed++
			attempted++
			continue
		}
		attempted++
		if err := f.fn(ctx, now, res); err != nil {
			failed++
			res.Errs = append(res.Errs, fmt.Sprintf("%s: %v", f.name, err))
			s.log.Warn("sampling %s failed: %v", f.name, err)
		}
	}

	if attempted > 0 && failed == attempted {
		return res, errors.New(errors.ErrSample,
			"No metric family could be sampled",
			"Run 'vitals doctor' to check /proc access\n\n  "+strings.Join(res.Errs, "\n  "))
	}
	return res, nil
}

// Check verifies that sampling can work at all. Used at startup so a host
// without a readable procfs fails fast instead of ticking on empty data.
func (s *Sampler) Check() error {
	if _, err := os.Stat(s.procRoot); err != nil {
		return errors.WrapWithCode(err, errors.ErrSample,
			fmt.Sprintf("Cannot access %s", s.procRoot),
			"vitals reads metrics from the proc filesystem; it must be mounted and readable")
	}
	return nil
}

func (s *Sampler) add(res *Result, ts time.Time, key string, value float64, unit string) {
	res.Samples = append(res.Samples, metrics.Sample{
		Timestamp: ts,
		Key:       key,
		Value:     value,
		Unit:      unit,
	})
}
