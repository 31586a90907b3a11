// Package proc performs process control operations for the dashboard:
// terminating, killing, and renicing processes. These are thin OS calls
// with no retained state; permission and existence failures come back as
// structured errors for the status line, never panics.
package proc

import (
	"fmt"
	"syscall"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// Nice value bounds accepted by SetPriority.
const (
	MinNice = -20
	MaxNice = 19
)

// Terminate sends SIGTERM, asking the process to shut down cleanly.
func Terminate(pid int) error {
	return signal(pid, syscall.SIGTERM, "terminate")
}

// Kill sends SIGKILL. The process gets no chance to clean up.
func Kill(pid int) error {
	return signal(pid, syscall.SIGKILL, "kill")
}

// signal delivers sig to pid, mapping the usual failure modes to
// structured errors.
func signal(pid int, sig syscall.Signal, verb string) error {
	if pid <= 0 {
		// pid 0 signals the caller's process group, negative pids signal
		// arbitrary groups; neither is ever what the dashboard means.
		return errors.New(errors.ErrProc,
			fmt.Sprintf("Refusing to %s pid %d", verb, pid),
			"Process ids are positive; select a process row first.")
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return procError(err, pid, verb)
	}
	return nil
}

// SetPriority renices a process. nice ranges -20 (highest priority) to
// 19 (lowest); raising priority (lowering nice) needs privileges.
func SetPriority(pid, nice int) error {
	if pid <= 0 {
		return errors.New(errors.ErrProc,
			fmt.Sprintf("Refusing to renice pid %d", pid),
			"Process ids are positive; select a process row first.")
	}
	if nice < MinNice || nice > MaxNice {
		return errors.New(errors.ErrProc,
			fmt.Sprintf("Nice value %d is out of range", nice),
			"Nice values range from -20 (highest priority) to 19 (lowest).")
	}
	if err := syscall.Setpriority(syscall.PRIO_PROCESS, pid, nice); err != nil {
		return procError(err, pid, "renice")
	}
	return nil
}

// GetPriority reads a process's current nice value.
func GetPriority(pid int) (int, error) {
	if pid <= 0 {
		return 0, errors.New(errors.ErrProc,
			fmt.Sprintf("Refusing to read priority of pid %d", pid),
			"Process ids are positive; select a process row first.")
	}
	nice, err := syscall.Getpriority(syscall.PRIO_PROCESS, pid)
	if err != nil {
		return 0, procError(err, pid, "read priority of")
	}
	// Getpriority returns 20-nice so that the syscall never returns a
	// negative success value; undo that.
	return 20 - nice, nil
}

// procError converts an errno into an error whose suggestion tells the
// operator what actually went wrong.
func procError(err error, pid int, verb string) error {
	switch err {
	case syscall.ESRCH:
		return errors.WrapWithCode(err, errors.ErrProc,
			fmt.Sprintf("No process with pid %d", pid),
			"The process exited; the table refreshes on the next tick.")
	case syscall.EPERM, syscall.EACCES:
		return errors.WrapWithCode(err, errors.ErrProc,
			fmt.Sprintf("Not allowed to %s pid %d", verb, pid),
			"The process belongs to another user; rerun vitals with more privileges.")
	default:
		return errors.WrapWithCode(err, errors.ErrProc,
			fmt.Sprintf("Failed to %s pid %d", verb, pid), "")
	}
}
