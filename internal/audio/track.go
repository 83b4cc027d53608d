package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is returned for tracks with a non-positive rate or channel count.
var ErrInvalidFormat = errors.New("invalid audio format")

// Track is one decoded audio input. Samples are signed 16-bit and interleaved
// by channel. A Track is never mutated after construction, so it may be read
// from any goroutine.
type Track struct {
	path       string
	sampleRate int
	channels   int
	samples    []int16
}

// NewTrack wraps decoded samples. The slice is owned by the Track afterwards.
func NewTrack(path string, sampleRate, channels int, samples []int16) (*Track, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, sampleRate, channels)
	}
	return &Track{
		path:       path,
		sampleRate: sampleRate,
		channels:   channels,
		samples:    samples,
	}, nil
}

// Path returns the file the track was loaded from.
func (t *Track) Path() string { return t.path }

// SampleRate returns the rate in Hz.
func (t *Track) SampleRate() int { return t.sampleRate }

// Channels returns the interleaved channel count.
func (t *Track) Channels() int { return t.channels }

// SampleCount returns the total number of raw samples across all channels.
func (t *Track) SampleCount() int { return len(t.samples) }

// Samples returns the raw interleaved samples. Callers must not modify them.
func (t *Track) Samples() []int16 { return t.samples }

// Duration returns the playback length.
func (t *Track) Duration() time.Duration {
	perChannel := len(t.samples) / t.channels
	return time.Duration(perChannel) * time.Second / time.Duration(t.sampleRate)
}

// Average returns the mean across all channels of the sample frame starting
// at raw index i, or 0 when it lies outside the track.
func (t *Track) Average(i int) int16 {
	return AverageBounded(t.samples, i, t.channels, len(t.samples))
}

// SamplesPerFrame returns how many per-channel samples make up one video frame.
func (t *Track) SamplesPerFrame(fps int) int {
	return t.sampleRate / fps
}

// FrameCount returns the number of whole video frames the track spans.
func (t *Track) FrameCount(fps int) int {
	spf := t.SamplesPerFrame(fps)
	if spf <= 0 {
		return 0
	}
	return len(t.samples) / t.channels / spf
}
