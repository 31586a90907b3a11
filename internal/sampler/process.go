package sampler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/vitals/internal/metrics"
)

// USER_HZ. Fixed at 100 on every Linux architecture vitals targets.
const clockTicksPerSec = 100

// procTimes is the per-pid delta state for CPU percentages.
type procTimes struct {
	jiffies uint64
	at      time.Time
}

// sampleProcesses walks /proc/<pid> and emits proc.count plus per-pid
// cpu/mem percentages. Pids that vanish between the directory listing and
// the detail read are skipped silently; permission failures are logged
// once per pid per session and the pid omitted for the tick.
func (s *Sampler) sampleProcesses(ctx context.Context, ts time.Time, res *Result) error {
	entries, err := os.ReadDir(s.procRoot)
	if err != nil {
		return err
	}

	memTotal := s.readMemTotal()
	seen := make(map[int]bool, len(entries))
	var rows []metrics.ProcessInfo

	walked := 0
	for _, e := range entries {
		pid, ok := pidFromName(e.Name())
		if !ok {
			continue
		}
		seen[pid] = true

		// The walk is the slow part of a tick; honor the sampling budget
		// and keep whatever was gathered so far.
		walked++
		if walked%64 == 0 && ctx.Err() != nil {
			res.Errs = append(res.Errs, fmt.Sprintf("processes: %v after %d pids", ctx.Err(), walked))
			break
		}

		info, jiffies, err := s.readProcess(pid)
		if err != nil {
			if isPermission(err) && !s.denied[pid] {
				s.denied[pid] = true
				s.log.Warn("pid %d unreadable: %v", pid, err)
			}
			continue
		}

		if prev, ok := s.prevProc[pid]; ok {
			elapsed := ts.Sub(prev.at).Seconds()
			if elapsed > 0 && jiffies >= prev.jiffies {
				info.CPUPercent = float64(jiffies-prev.jiffies) / clockTicksPerSec / elapsed * 100
			}
		}
		s.prevProc[pid] = procTimes{jiffies: jiffies, at: ts}

		if memTotal > 0 {
			info.MemPercent = float64(info.RSSBytes) / float64(memTotal) * 100
		}

		rows = append(rows, info)
	}

	// Drop delta state for pids that no longer exist.
	for pid := range s.prevProc {
		if !seen[pid] {
			delete(s.prevProc, pid)
			delete(s.denied, pid)
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("no process entries under %s", s.procRoot)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CPUPercent != rows[j].CPUPercent {
			return rows[i].CPUPercent > rows[j].CPUPercent
		}
		return rows[i].PID < rows[j].PID
	})
	if s.procCap > 0 && len(rows) > s.procCap {
		rows = rows[:s.procCap]
	}

	s.add(res, ts, metrics.KeyProcCount, float64(len(seen)), metrics.UnitCount)
	for _, p := range rows {
		s.add(res, ts, metrics.ProcCPUKey(p.PID), p.CPUPercent, metrics.UnitPercent)
		s.add(res, ts, metrics.ProcMemKey(p.PID), p.MemPercent, metrics.UnitPercent)
	}
	res.Processes = rows

	return nil
}

// readProcess gathers one pid's table row plus its cumulative cpu jiffies.
func (s *Sampler) readProcess(pid int) (metrics.ProcessInfo, uint64, error) {
	dir := filepath.Join(s.procRoot, strconv.Itoa(pid))

	st, err := s.readProcStat(dir)
	if err != nil {
		return metrics.ProcessInfo{}, 0, err
	}

	info := metrics.ProcessInfo{
		PID:      pid,
		Name:     st.comm,
		State:    st.state,
		Threads:  st.threads,
		RSSBytes: st.rssPages * s.pageSize,
	}

	// uid and command are cosmetic; their absence never drops the row.
	if uid, err := readUID(filepath.Join(dir, "status")); err == nil {
		info.User = s.lookupUser(uid)
	}
	info.Command = readCmdline(filepath.Join(dir, "cmdline"), st.comm)

	return info, st.utime + st.stime, nil
}

// procStat is the subset of /proc/<pid>/stat fields vitals uses.
type procStat struct {
	comm     string
	state    string
	utime    uint64
	stime    uint64
	threads  int
	rssPages int64
}

// readProcStat parses /proc/<pid>/stat. The comm field is parenthesized
// and may itself contain spaces or parens, so fields are split after the
// last ')'.
func (s *Sampler) readProcStat(dir string) (procStat, error) {
	data, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return procStat{}, err
	}

	line := string(data)
	lparen := strings.IndexByte(line, '(')
	rparen := strings.LastIndexByte(line, ')')
	if lparen < 0 || rparen < 0 || rparen < lparen {
		return procStat{}, fmt.Errorf("malformed stat line for %s", dir)
	}

	st := procStat{comm: line[lparen+1 : rparen]}

	// Fields after the comm, 0-indexed: 0 state, 11 utime, 12 stime,
	// 17 num_threads, 21 rss (pages).
	fields := strings.Fields(line[rparen+1:])
	if len(fields) < 22 {
		return procStat{}, fmt.Errorf("short stat line for %s: %d fields", dir, len(fields))
	}

	st.state = fields[0]
	if st.utime, err = strconv.ParseUint(fields[11], 10, 64); err != nil {
		return procStat{}, fmt.Errorf("parse utime: %w", err)
	}
	if st.stime, err = strconv.ParseUint(fields[12], 10, 64); err != nil {
		return procStat{}, fmt.Errorf("parse stime: %w", err)
	}
	if st.threads, err = strconv.Atoi(fields[17]); err != nil {
		st.threads = 0
	}
	if st.rssPages, err = strconv.ParseInt(fields[21], 10, 64); err != nil {
		st.rssPages = 0
	}

	return st, nil
}

// readUID extracts the real uid from /proc/<pid>/status.
func readUID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		return fields[1], nil
	}
	return "", fmt.Errorf("no Uid line in %s", path)
}

// readCmdline returns the NUL-separated command line, or the bracketed
// comm for kernel threads that have none.
func readCmdline(path, comm string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return "[" + comm + "]"
	}
	cmd := strings.TrimRight(strings.ReplaceAll(string(data), "\x00", " "), " ")
	if cmd == "" {
		return "[" + comm + "]"
	}
	return cmd
}

// lookupUser resolves a uid to a username, caching results. Unresolvable
// uids (deleted users, foreign containers) display as the raw uid.
func (s *Sampler) lookupUser(uid string) string {
	if name, ok := s.users[uid]; ok {
		return name
	}
	name := uid
	if u, err := user.LookupId(uid); err == nil {
		name = u.Username
	}
	s.users[uid] = name
	return name
}

// pidFromName reports whether a /proc entry name is a pid directory.
func pidFromName(name string) (int, bool) {
	if name == "" || name[0] < '1' || name[0] > '9' {
		return 0, false
	}
	pid, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return pid, true
}

func isPermission(err error) bool {
	return errors.Is(err, os.ErrPermission)
}
