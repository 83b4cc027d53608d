package ui

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/linuxmatters/oscigen/internal/cli"
	"github.com/linuxmatters/oscigen/internal/pipeline"
)

// PlainReporter prints line-oriented progress for non-interactive output,
// one line per whole percent.
type PlainReporter struct {
	Out io.Writer

	last int
}

// NewPlainReporter returns a reporter writing to out.
func NewPlainReporter(out io.Writer) *PlainReporter {
	return &PlainReporter{Out: out, last: -1}
}

func (r *PlainReporter) line(key, value string) {
	fmt.Fprintf(r.Out, "%s %s\n", cli.KeyStyle.Render(key+":"), cli.ValueStyle.Render(value))
}

// Started prints the run summary.
func (r *PlainReporter) Started(s pipeline.Summary) {
	r.line("Master", fmt.Sprintf("%s (%.1fkHz, %dch, %.1fs)",
		s.Master, float64(s.SampleRate)/1000, s.Channels, s.Duration.Seconds()))
	r.line("Video", fmt.Sprintf("%s %dx%d @ %dfps, %d waveform(s), %d frames",
		s.Encoder, s.Width, s.Height, s.FPS, s.Waveforms, s.TotalFrames))
}

// Progress prints when the whole-percent value changes.
func (r *PlainReporter) Progress(p pipeline.Progress) {
	whole := int(math.Floor(p.Percent))
	if whole == r.last {
		return
	}
	r.last = whole
	r.line("Progress", fmt.Sprintf("%.2f%% (frame %d/%d, %s written)",
		p.Percent, p.Frame, p.TotalFrames, humanize.IBytes(p.Bytes)))
}
