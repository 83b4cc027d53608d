//go:build linux || darwin

package encoder

import (
	"context"
	"syscall"
	"testing"
)

// TestFFmpegSink_OwnProcessGroup checks a terminal interrupt sent to our
// process group does not reach ffmpeg, which must outlive it to finalise.
func TestFFmpegSink_OwnProcessGroup(t *testing.T) {
	bin := fakeFFmpeg(t, `cat > /dev/null`)
	sink, err := StartFFmpeg(context.Background(), testSinkConfig(t, bin))
	if err != nil {
		t.Fatalf("StartFFmpeg: %v", err)
	}
	defer sink.Close()

	pid := sink.cmd.Process.Pid
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		t.Fatalf("Getpgid(%d): %v", pid, err)
	}
	if pgid == syscall.Getpgrp() {
		t.Errorf("ffmpeg shares our process group %d", pgid)
	}
	if pgid != pid {
		t.Errorf("ffmpeg pgid = %d, want its own pid %d", pgid, pid)
	}
	t.Logf("parent pgrp %d, ffmpeg pid %d pgid %d", syscall.Getpgrp(), pid, pgid)

	if err := sink.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
