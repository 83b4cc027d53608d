//go:build unix

package encoder

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup puts ffmpeg in its own process group so a terminal
// interrupt reaches only oscigen, which then drains and closes stdin.
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
