//go:build unix

package overlay

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

var errNoSuchProcess = errors.New("no such process")

// sysProcAttr puts the overlay in its own process group so a terminal
// wrapper and the overlay it runs are signalled together.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func terminate(pid int) error { return signalGroup(pid, syscall.SIGTERM) }

func kill(pid int) error { return signalGroup(pid, syscall.SIGKILL) }

// signalGroup signals the process group led by pid, falling back to the
// single process when pid does not lead a group.
func signalGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}

	pgErr := syscall.Kill(-pid, sig)
	if pgErr == nil {
		return nil
	}

	if errors.Is(pgErr, syscall.ESRCH) || errors.Is(pgErr, syscall.EPERM) {
		pidErr := syscall.Kill(pid, sig)
		if pidErr == nil {
			return nil
		}
		if isProcessGone(pidErr) {
			return errNoSuchProcess
		}
		return fmt.Errorf("sending %v to PID %d: %w", sig, pid, pidErr)
	}

	return fmt.Errorf("sending %v to process group %d: %w", sig, pid, pgErr)
}

// IsNoSuchProcess reports whether err means the process has already exited.
func IsNoSuchProcess(err error) bool {
	return errors.Is(err, errNoSuchProcess)
}

func isProcessGone(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESRCH
	}
	return strings.Contains(err.Error(), "process already finished")
}
