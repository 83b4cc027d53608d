package pipeline

import (
	"fmt"
	"time"

	"github.com/linuxmatters/oscigen/internal/audio"
	"github.com/linuxmatters/oscigen/internal/config"
	"github.com/linuxmatters/oscigen/internal/renderer"
)

// Snapshot renders the frame shown at offset into the master and writes it
// to path as a PNG.
func Snapshot(tracks []*audio.Track, s config.Settings, at time.Duration, path string) error {
	if len(tracks) == 0 {
		return audio.ErrNoTracks
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if at < 0 {
		return fmt.Errorf("snapshot offset must not be negative: %v", at)
	}

	master := tracks[0]
	frame := int(at.Seconds() * float64(s.FPS))
	if n := master.FrameCount(s.FPS); frame >= n {
		return fmt.Errorf("snapshot at %v is past the end of %s (%v)", at, master.Path(), master.Duration())
	}

	comp, err := renderer.NewCompositor(s)
	if err != nil {
		return err
	}
	return comp.Snapshot(tracks, frame*master.SamplesPerFrame(s.FPS), path)
}
