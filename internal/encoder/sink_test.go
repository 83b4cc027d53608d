package encoder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestBuildArgs_Software(t *testing.T) {
	got := BuildArgs(SinkConfig{
		OutputPath: "out.mp4",
		AudioPath:  "master.wav",
		Width:      1920,
		Height:     1080,
		Framerate:  60,
	})
	want := []string{
		"-r", "60", "-f", "rawvideo", "-pix_fmt", "rgba", "-s", "1920x1080",
		"-i", "-", "-i", "master.wav", "-strict", "-2", "-threads", "0",
		"-preset", "fast", "-y", "-pix_fmt", "yuv420p", "-crf", "21", "out.mp4",
	}

	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("BuildArgs:\n got %q\nwant %q", got, want)
	}
}

func TestBuildArgs_Hardware(t *testing.T) {
	tests := []struct {
		enc      HWEncoder
		contains []string
	}{
		{HWEncoder{Name: "h264_nvenc", Type: HWAccelNVENC}, []string{"-c:v h264_nvenc", "-pix_fmt yuv420p"}},
		{HWEncoder{Name: "h264_vaapi", Type: HWAccelVAAPI}, []string{"-vaapi_device " + vaapiDevice, "hwupload", "-c:v h264_vaapi"}},
		{HWEncoder{Name: "h264_qsv", Type: HWAccelQSV}, []string{"-pix_fmt nv12", "-c:v h264_qsv"}},
	}

	for _, tt := range tests {
		t.Run(tt.enc.Name, func(t *testing.T) {
			enc := tt.enc
			args := strings.Join(BuildArgs(SinkConfig{
				OutputPath: "out.mp4",
				AudioPath:  "master.wav",
				Width:      1280,
				Height:     720,
				Framerate:  30,
				HWEncoder:  &enc,
			}), " ")

			for _, want := range tt.contains {
				if !strings.Contains(args, want) {
					t.Errorf("args %q missing %q", args, want)
				}
			}
			if strings.Contains(args, "-crf") {
				t.Errorf("hardware args %q should not carry -crf", args)
			}
			if !strings.HasSuffix(args, " out.mp4") {
				t.Errorf("output path must be last: %q", args)
			}
		})
	}
}

func TestSinkConfigValidate(t *testing.T) {
	base := SinkConfig{OutputPath: "o.mp4", AudioPath: "a.wav", Width: 2, Height: 2, Framerate: 1}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := []func(*SinkConfig){
		func(c *SinkConfig) { c.Width = 0 },
		func(c *SinkConfig) { c.Framerate = 0 },
		func(c *SinkConfig) { c.OutputPath = "" },
		func(c *SinkConfig) { c.AudioPath = "" },
	}
	for i, mutate := range bad {
		c := base
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSinkConfig(t *testing.T, ffmpegPath string) SinkConfig {
	return SinkConfig{
		FFmpegPath: ffmpegPath,
		OutputPath: filepath.Join(t.TempDir(), "out.raw"),
		AudioPath:  "master.wav",
		Width:      2,
		Height:     2,
		Framerate:  60,
	}
}

// TestFFmpegSink_PipesFrames uses a stand-in that copies stdin to the
// output path, which is always the last argument.
func TestFFmpegSink_PipesFrames(t *testing.T) {
	bin := fakeFFmpeg(t, `for last; do :; done; cat > "$last"`)
	cfg := testSinkConfig(t, bin)

	sink, err := StartFFmpeg(context.Background(), cfg)
	if err != nil {
		t.Fatalf("StartFFmpeg: %v", err)
	}

	frame := bytes.Repeat([]byte{1, 2, 3, 4}, 4)
	for i := 0; i < 3; i++ {
		if _, err := sink.Write(frame); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, bytes.Repeat(frame, 3)) {
		t.Errorf("output has %d bytes, want %d", len(got), 3*len(frame))
	}

	// Close is idempotent
	if err := sink.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestFFmpegSink_ExitErrorIncludesStderr(t *testing.T) {
	bin := fakeFFmpeg(t, `cat > /dev/null; echo "Unknown encoder 'libx264'" >&2; exit 1`)

	sink, err := StartFFmpeg(context.Background(), testSinkConfig(t, bin))
	if err != nil {
		t.Fatalf("StartFFmpeg: %v", err)
	}

	err = sink.Close()
	if err == nil {
		t.Fatal("expected error from failing ffmpeg")
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Errorf("error %q should include ffmpeg stderr", err)
	}
	if !strings.Contains(sink.Stderr(), "libx264") {
		t.Errorf("Stderr() = %q", sink.Stderr())
	}
}

func TestStartFFmpeg_MissingBinary(t *testing.T) {
	cfg := testSinkConfig(t, filepath.Join(t.TempDir(), "no-such-ffmpeg"))
	if _, err := StartFFmpeg(context.Background(), cfg); err == nil {
		t.Error("expected error for missing ffmpeg")
	}
}

func TestStartFFmpeg_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := StartFFmpeg(ctx, testSinkConfig(t, "ffmpeg")); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 8}
	b.Write([]byte("hello "))
	b.Write([]byte("world"))
	if got := b.String(); got != "lo world" {
		t.Errorf("tail = %q, want %q", got, "lo world")
	}
	if got := b.suffix(); got != "\nlo world" {
		t.Errorf("suffix = %q", got)
	}

	empty := &tailBuffer{limit: 8}
	if empty.suffix() != "" {
		t.Error("empty tail should have no suffix")
	}
}
