package doctor

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProcReadCheck verifies one procfs file is present and readable. The
// sampler degrades gracefully at runtime, but an unreadable file at
// doctor time means a whole metric family will never produce data.
type ProcReadCheck struct {
	ProcRoot string // procfs mount, "" means /proc
	File     string // relative path, e.g. "stat" or "net/dev"
	Family   string // metric family that depends on the file
}

func (c *ProcReadCheck) Name() string     { return "proc_" + filepath.Base(c.File) }
func (c *ProcReadCheck) Category() string { return "PROCFS" }

func (c *ProcReadCheck) Run() CheckResult {
	root := c.ProcRoot
	if root == "" {
		root = "/proc"
	}
	path := filepath.Join(root, c.File)

	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s", path),
			Suggestion: fmt.Sprintf("The %s metrics need this file; check that procfs is mounted", c.Family),
		}
	}
	if len(data) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s is empty", path),
			Suggestion: fmt.Sprintf("The %s metrics will have no data", c.Family),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s readable", path),
	}
}

func (c *ProcReadCheck) Fix() error { return nil }

// NewProcfsChecks creates the procfs readability checks, one per file
// the sampler depends on.
func NewProcfsChecks(procRoot string) []Check {
	return []Check{
		&ProcReadCheck{ProcRoot: procRoot, File: "stat", Family: "cpu"},
		&ProcReadCheck{ProcRoot: procRoot, File: "meminfo", Family: "memory"},
		&ProcReadCheck{ProcRoot: procRoot, File: "net/dev", Family: "network"},
		&ProcReadCheck{ProcRoot: procRoot, File: "loadavg", Family: "cpu"},
	}
}
