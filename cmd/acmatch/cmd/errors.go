package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/corey/acmatch/internal/config"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance when a bbolt open fails due to
// lock contention. `acmatch watch` holds the database for as long as it
// runs and records its PID; this distinguishes a live watcher, a stale PID
// file, and an unknown lock holder.
func diagnoseDBLock(root string) string {
	pidFile := config.NewPaths(root).PIDFile

	if pid, ok := readPID(pidFile); ok {
		if processAlive(pid) {
			return fmt.Sprintf("database is locked by a running watcher (pid %d)\n"+
				"  → match the watched set through it:  acmatch match <name>\n"+
				"  → or stop it first:                  acmatch stop\n"+
				"  → then retry your command", pid)
		}
		return fmt.Sprintf("database is locked: watch PID file exists but process %d is gone\n"+
			"  → a previous watcher may have crashed\n"+
			"  → find the process:  ps aux | grep 'acmatch'\n"+
			"  → clean up PID file: rm %s", pid, pidFile)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'acmatch'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
