// Package pipeline drives a render: it walks the master track frame by
// frame, draws each frame and feeds it to the encoder.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/linuxmatters/oscigen/internal/audio"
	"github.com/linuxmatters/oscigen/internal/config"
	"github.com/linuxmatters/oscigen/internal/encoder"
	"github.com/linuxmatters/oscigen/internal/renderer"
)

// ErrTooShort is returned when the master track is shorter than one frame.
var ErrTooShort = errors.New("audio too short to render a frame")

// SinkFactory opens the destination for raw frames.
type SinkFactory func(ctx context.Context, cfg encoder.SinkConfig) (encoder.Sink, error)

// FFmpegSink is the default SinkFactory.
func FFmpegSink(ctx context.Context, cfg encoder.SinkConfig) (encoder.Sink, error) {
	return encoder.StartFFmpeg(ctx, cfg)
}

// Summary describes a run once the sink is open.
type Summary struct {
	Master      string
	SampleRate  int
	Channels    int
	Duration    time.Duration
	Waveforms   int
	TotalFrames int
	Width       int
	Height      int
	FPS         int
	Encoder     string
}

// Progress is reported after each frame is queued.
type Progress struct {
	Frame       int // Frames produced so far
	TotalFrames int
	Percent     float64
	Elapsed     time.Duration
	Bytes       uint64 // Bytes handed to the sink
	QueueDepth  int
	QueueCap    int
}

// Reporter receives run events on the render goroutine. Implementations
// must not block for long; rendering waits on them.
type Reporter interface {
	Started(Summary)
	Progress(Progress)
}

// PreviewFunc is shown the finished frame. Returning false detaches the
// preview for the rest of the run. img is reused by the next frame.
type PreviewFunc func(img *image.RGBA) bool

// Options configures Run.
type Options struct {
	Tracks   []*audio.Track // Tracks[0] is the master
	Output   string
	Settings config.Settings
	HWAccel  encoder.HWAccelType

	NewSink  SinkFactory // nil uses FFmpegSink
	Reporter Reporter    // optional

	// ProgressEvery throttles Reporter.Progress to every nth frame. The final
	// frame is always reported.
	ProgressEvery int

	Preview      PreviewFunc // optional
	PreviewEvery int         // frames between preview updates, default 6
}

// Result summarises a finished or interrupted run.
type Result struct {
	Frames          int // Frames rendered and queued
	TotalFrames     int
	Stats           encoder.Stats
	Encoder         string // Video encoder actually used
	Elapsed         time.Duration
	PreviewDetached bool
	Cancelled       bool
}

// Percent returns completion as a percentage rounded up to two decimals.
func Percent(cur, n int) float64 {
	if n <= 0 {
		return 100
	}
	return math.Ceil(float64(cur)/float64(n)*10000) / 100
}

// Run renders every frame of the master's duration into the sink. Cancelling
// ctx stops rendering after the current frame; frames already queued are
// still written and the sink is closed normally, and Run returns
// context.Canceled alongside the partial Result.
func Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if len(opts.Tracks) == 0 {
		return res, audio.ErrNoTracks
	}
	s := opts.Settings
	if err := s.Validate(); err != nil {
		return res, fmt.Errorf("invalid settings: %w", err)
	}

	master := opts.Tracks[0]
	samplesPerFrame := master.SamplesPerFrame(s.FPS)
	numFrames := master.FrameCount(s.FPS)
	if numFrames == 0 {
		return res, fmt.Errorf("%w: %s", ErrTooShort, master.Path())
	}
	res.TotalFrames = numFrames

	comp, err := renderer.NewCompositor(s)
	if err != nil {
		return res, err
	}

	cfg := encoder.SinkConfig{
		FFmpegPath: s.FFmpegPath,
		OutputPath: opts.Output,
		AudioPath:  master.Path(),
		Width:      s.Width,
		Height:     s.Height,
		Framerate:  s.FPS,
	}
	encoderName := "libx264"
	if opts.HWAccel != "" && opts.HWAccel != encoder.HWAccelNone {
		if hw := encoder.SelectBestEncoder(ctx, s.FFmpegPath, opts.HWAccel); hw != nil {
			cfg.HWEncoder = hw
			encoderName = hw.Name
		}
	}

	res.Encoder = encoderName

	newSink := opts.NewSink
	if newSink == nil {
		newSink = FFmpegSink
	}
	sink, err := newSink(ctx, cfg)
	if err != nil {
		return res, fmt.Errorf("opening output: %w", err)
	}

	if opts.Reporter != nil {
		opts.Reporter.Started(Summary{
			Master:      master.Path(),
			SampleRate:  master.SampleRate(),
			Channels:    master.Channels(),
			Duration:    master.Duration(),
			Waveforms:   len(renderer.WaveformTracks(opts.Tracks)),
			TotalFrames: numFrames,
			Width:       s.Width,
			Height:      s.Height,
			FPS:         s.FPS,
			Encoder:     encoderName,
		})
	}

	pool := encoder.NewFramePool(s.FrameSize())
	enc := encoder.NewEncoder(sink, s.QueueCapacity, encoder.WithPool(pool))
	enc.Start()

	progressEvery := max(opts.ProgressEvery, 1)
	previewEvery := opts.PreviewEvery
	if previewEvery <= 0 {
		previewEvery = 6
	}
	preview := opts.Preview

	start := time.Now()
	var renderErr error

	for cur := 0; cur < numFrames; cur++ {
		if ctx.Err() != nil {
			break
		}
		if err := enc.Err(); err != nil {
			// The sink is gone; Finish reports why
			break
		}

		buf := pool.Get()
		*buf = comp.RenderInto(opts.Tracks, cur*samplesPerFrame, *buf)

		if err := enc.Submit(ctx, encoder.Frame{Index: uint32(cur), Pix: *buf, Buf: buf}); err != nil {
			pool.Put(buf)
			if ctx.Err() == nil {
				renderErr = fmt.Errorf("queueing frame %d: %w", cur, err)
			}
			break
		}
		res.Frames++

		if preview != nil && cur%previewEvery == 0 {
			if !preview(comp.Image()) {
				preview = nil
				res.PreviewDetached = true
			}
		}

		if opts.Reporter != nil && (res.Frames%progressEvery == 0 || res.Frames == numFrames) {
			st := enc.Stats()
			opts.Reporter.Progress(Progress{
				Frame:       res.Frames,
				TotalFrames: numFrames,
				Percent:     Percent(res.Frames, numFrames),
				Elapsed:     time.Since(start),
				Bytes:       st.Bytes,
				QueueDepth:  enc.QueueDepth(),
				QueueCap:    st.Capacity,
			})
		}
	}

	finishErr := enc.Finish()
	closeErr := sink.Close()

	res.Stats = enc.Stats()
	res.Elapsed = time.Since(start)

	switch {
	case renderErr != nil:
		return res, renderErr
	case ctx.Err() != nil && res.Frames < numFrames:
		// A sink that died with the interrupt is part of the cancellation
		res.Cancelled = true
		if sinkErr := errors.Join(finishErr, closeErr); sinkErr != nil {
			return res, fmt.Errorf("%w: %w", ctx.Err(), sinkErr)
		}
		return res, ctx.Err()
	case finishErr != nil:
		return res, fmt.Errorf("encoding: %w", finishErr)
	case closeErr != nil:
		return res, fmt.Errorf("finalising output: %w", closeErr)
	}

	return res, nil
}
