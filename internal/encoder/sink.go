package encoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// stderrTailSize bounds how much ffmpeg diagnostic output is kept for error
// messages.
const stderrTailSize = 4096

// Sink receives raw RGBA frames in order.
type Sink interface {
	io.WriteCloser
}

// SinkConfig holds the ffmpeg subprocess configuration
type SinkConfig struct {
	FFmpegPath string // Binary name or path; resolved via PATH
	OutputPath string // Path to output video file
	AudioPath  string // Soundtrack muxed into the output
	Width      int    // Video width in pixels
	Height     int    // Video height in pixels
	Framerate  int    // Frames per second

	HWEncoder *HWEncoder // nil for software encoding
}

// Validate checks the fields ffmpeg cannot recover from.
func (c SinkConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", c.Width, c.Height)
	}
	if c.Framerate <= 0 {
		return fmt.Errorf("invalid framerate: %d", c.Framerate)
	}
	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}
	if c.AudioPath == "" {
		return errors.New("audio path cannot be empty")
	}
	return nil
}

// BuildArgs returns the ffmpeg command line that reads raw RGBA frames from
// stdin, muxes the soundtrack and encodes to H.264.
func BuildArgs(c SinkConfig) []string {
	args := []string{
		"-r", strconv.Itoa(c.Framerate),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", c.Width, c.Height),
	}
	args = append(args, deviceArgs(c.HWEncoder)...)
	args = append(args,
		"-i", "-",
		"-i", c.AudioPath,
		"-strict", "-2",
		"-threads", "0",
	)
	args = append(args, videoCodecArgs(c.HWEncoder)...)
	return append(args, c.OutputPath)
}

// FFmpegSink pipes frames into an ffmpeg child process.
type FFmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer

	closeOnce sync.Once
	closeErr  error
}

// StartFFmpeg launches ffmpeg and returns a sink feeding its stdin. The
// process is not tied to ctx and, on unix, runs in its own process group:
// once started it is always finalised through Close so an interrupted render
// still leaves a playable file.
func StartFFmpeg(ctx context.Context, c SinkConfig) (*FFmpegSink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	bin := c.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	cmd := exec.Command(path, BuildArgs(c)...)
	detachProcessGroup(cmd)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdin: %w", err)
	}
	tail := &tailBuffer{limit: stderrTailSize}
	cmd.Stderr = tail

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return &FFmpegSink{cmd: cmd, stdin: stdin, stderr: tail}, nil
}

// Write sends one frame's bytes to ffmpeg.
func (s *FFmpegSink) Write(p []byte) (int, error) {
	n, err := s.stdin.Write(p)
	if err != nil {
		return n, fmt.Errorf("ffmpeg stdin: %w%s", err, s.stderr.suffix())
	}
	return n, nil
}

// Close ends the input stream and waits for ffmpeg to finish the file. A
// non-zero exit is reported together with the tail of ffmpeg's stderr.
func (s *FFmpegSink) Close() error {
	s.closeOnce.Do(func() {
		closeErr := s.stdin.Close()
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = fmt.Errorf("ffmpeg exited: %w%s", err, s.stderr.suffix())
			return
		}
		if closeErr != nil {
			s.closeErr = fmt.Errorf("closing ffmpeg stdin: %w", closeErr)
		}
	})
	return s.closeErr
}

// Stderr returns the retained tail of ffmpeg's diagnostic output.
func (s *FFmpegSink) Stderr() string {
	return s.stderr.String()
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// suffix formats the tail for appending to an error message.
func (b *tailBuffer) suffix() string {
	tail := strings.TrimSpace(b.String())
	if tail == "" {
		return ""
	}
	return "\n" + tail
}
