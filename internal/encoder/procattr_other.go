//go:build !unix

package encoder

import "os/exec"

func detachProcessGroup(*exec.Cmd) {}
