//go:build !windows

package process

import (
	"os"

	"golang.org/x/sys/unix"
)

var ProcAttrWithProcessGroup = &unix.SysProcAttr{Setpgid: true}

// TerminateProcess sends signal to the process group of pid if pid is a
// group leader, otherwise only to pid.
func TerminateProcess(pid int, signal os.Signal) error {
	if pid == 0 || pid == -1 {
		return nil
	}
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return err
	}

	if pgid == pid {
		pid = -1 * pid
	}

	target, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return target.Signal(signal)
}
