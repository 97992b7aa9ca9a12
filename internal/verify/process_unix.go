//go:build unix

package verify

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts cmd in its own process group and makes
// cancellation kill the whole group, so children holding the output pipes
// (test workers, watch-mode runners) die with it.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
