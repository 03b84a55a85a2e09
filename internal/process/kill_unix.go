//go:build !windows

// Package process holds the platform-specific process plumbing: killing the
// Chrome process tree and trapping shutdown signals.
package process

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// launcher.Kill() is the fallback, so the error is ignored.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// NotifyContext returns a context canceled on SIGINT or SIGTERM.
// Call stop to release the signal handler.
func NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
