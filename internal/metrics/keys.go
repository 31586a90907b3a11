package metrics

import (
	"fmt"
	"strings"
)

// Metric keys are stable dotted identifiers. Alert rules reference these
// directly, so renaming one is a breaking config change.
const (
	KeyCPUUsage  = "cpu.usage_pct"
	KeyLoad1     = "cpu.load1"
	KeyLoad5     = "cpu.load5"
	KeyLoad15    = "cpu.load15"
	KeyMemUsed   = "mem.used_pct"
	KeyMemUsedB  = "mem.used_bytes"
	KeyMemTotalB = "mem.total_bytes"
	KeyMemAvailB = "mem.available_bytes"
	KeySwapUsed  = "swap.used_pct"
	KeyDiskUsed  = "disk.used_pct"
	KeyDiskUsedB = "disk.used_bytes"
	KeyDiskTotB  = "disk.total_bytes"
	KeyNetRxBps  = "net.rx_bps"
	KeyNetTxBps  = "net.tx_bps"
	KeyNetErrs   = "net.err_per_sec"
	KeyProcCount = "proc.count"
	KeyUptime    = "host.uptime_sec"
)

// HostKeys lists every host-level key the sampler can emit. Per-process
// keys (proc.<pid>.*) are dynamic and not included.
func HostKeys() []string {
	return []string{
		KeyCPUUsage, KeyLoad1, KeyLoad5, KeyLoad15,
		KeyMemUsed, KeyMemUsedB, KeyMemTotalB, KeyMemAvailB,
		KeySwapUsed,
		KeyDiskUsed, KeyDiskUsedB, KeyDiskTotB,
		KeyNetRxBps, KeyNetTxBps, KeyNetErrs,
		KeyProcCount, KeyUptime,
	}
}

// Units used by the sampler.
const (
	UnitPercent     = "pct"
	UnitBytes       = "bytes"
	UnitBytesPerSec = "Bps"
	UnitPerSec      = "per_sec"
	UnitCount       = "count"
	UnitLoad        = "load"
	UnitSeconds     = "sec"
)

// Metric families, toggled individually in config.
const (
	FamilyCPU       = "cpu"
	FamilyMemory    = "memory"
	FamilyDisk      = "disk"
	FamilyNetwork   = "network"
	FamilyProcesses = "processes"
)

// Families lists every metric family the sampler knows about.
var Families = []string{FamilyCPU, FamilyMemory, FamilyDisk, FamilyNetwork, FamilyProcesses}

// ProcCPUKey returns the per-process CPU key, e.g. "proc.1234.cpu_pct".
func ProcCPUKey(pid int) string {
	return fmt.Sprintf("proc.%d.cpu_pct", pid)
}

// ProcMemKey returns the per-process memory key, e.g. "proc.1234.mem_pct".
func ProcMemKey(pid int) string {
	return fmt.Sprintf("proc.%d.mem_pct", pid)
}

// IsPerProcess reports whether key is a per-pid metric (proc.<pid>.*).
// proc.count is a host-level metric and returns false.
func IsPerProcess(key string) bool {
	if !strings.HasPrefix(key, "proc.") {
		return false
	}
	return key != KeyProcCount
}
