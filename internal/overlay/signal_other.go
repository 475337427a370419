//go:build !unix

package overlay

import (
	"errors"
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr { return nil }

// Without POSIX signals the overlay can only be killed outright.
func terminate(pid int) error { return kill(pid) }

func kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := p.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}

// IsNoSuchProcess reports whether err means the process has already exited.
func IsNoSuchProcess(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
