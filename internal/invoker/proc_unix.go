//go:build !windows

package invoker

import (
	"errors"
	"os/exec"
	"syscall"
)

// setupProcessGroup puts the shell in its own process group so the model
// binary it spawns can be killed along with it.
func setupProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killProcessGroup sends SIGKILL to every process in the command's group.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		// Fall back to the leader alone.
		return cmd.Process.Kill()
	}
	return nil
}
