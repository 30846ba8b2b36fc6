//go:build unix

package lifecycle

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// IsAlive probes pid with signal 0. EPERM means the process exists but
// belongs to someone else.
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Terminate asks pid to shut down gracefully.
func Terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

// Detach returns process attributes that start a child in its own session,
// so it outlives the launching terminal.
func Detach() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
