//go:build windows

// Package process holds the platform-specific process plumbing: killing the
// Chrome process tree and trapping shutdown signals.
package process

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
)

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	// launcher.Kill() is the fallback, so the error is ignored.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an integer
}

// NotifyContext returns a context canceled on interrupt.
// SIGTERM does not exist on Windows.
func NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
