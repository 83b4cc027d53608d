package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// File is the on-disk TOML overlay. Nil fields keep the current value, so a
// file only needs to mention what it changes.
//
//	[video]
//	width = 1280
//	height = 720
//
//	[waveform]
//	window_length = 1200
//	thickness = 3.0
//	color = "#00FF88"
type File struct {
	Video    VideoFile    `toml:"video"`
	Waveform WaveformFile `toml:"waveform"`
	Pipeline PipelineFile `toml:"pipeline"`
	Overlay  OverlayFile  `toml:"overlay"`
}

type VideoFile struct {
	Width           *int    `toml:"width"`
	Height          *int    `toml:"height"`
	Background      *string `toml:"background"`
	BackgroundImage *string `toml:"background_image"`
	FFmpeg          *string `toml:"ffmpeg"`
}

type WaveformFile struct {
	WindowLength *int     `toml:"window_length"`
	Thickness    *float64 `toml:"thickness"`
	MaxSegments  *int     `toml:"max_segments"`
	Smoothing    *bool    `toml:"smoothing"`
	Color        *string  `toml:"color"`
	MaxSnapScan  *float64 `toml:"max_snap_scan_seconds"`
}

type PipelineFile struct {
	QueueCapacity *int `toml:"queue_capacity"`
}

type OverlayFile struct {
	Title *string `toml:"title"`
	Color *string `toml:"color"`
}

// LoadFile reads a TOML file and applies it on top of base.
func LoadFile(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config: %w", err)
	}
	return Decode(data, base)
}

// Decode parses TOML bytes and applies them on top of base. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Decode(data []byte, base Settings) (Settings, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return base, fmt.Errorf("parsing config: %w", err)
	}
	return f.Apply(base)
}

// Apply overlays the non-nil fields of f onto s.
func (f *File) Apply(s Settings) (Settings, error) {
	if f.Video.Width != nil {
		s.Width = *f.Video.Width
	}
	if f.Video.Height != nil {
		s.Height = *f.Video.Height
	}
	if f.Video.Background != nil {
		c, err := ParseRGB(*f.Video.Background)
		if err != nil {
			return s, fmt.Errorf("video.background: %w", err)
		}
		s.BackgroundColor = c
	}
	if f.Video.BackgroundImage != nil {
		s.BackgroundImage = *f.Video.BackgroundImage
	}
	if f.Video.FFmpeg != nil {
		s.FFmpegPath = *f.Video.FFmpeg
	}

	if f.Waveform.WindowLength != nil {
		s.SampleWindowLength = *f.Waveform.WindowLength
	}
	if f.Waveform.Thickness != nil {
		s.Thickness = *f.Waveform.Thickness
	}
	if f.Waveform.MaxSegments != nil {
		s.MaxSegments = *f.Waveform.MaxSegments
	}
	if f.Waveform.Smoothing != nil {
		s.Smoothing = *f.Waveform.Smoothing
	}
	if f.Waveform.Color != nil {
		c, err := ParseRGB(*f.Waveform.Color)
		if err != nil {
			return s, fmt.Errorf("waveform.color: %w", err)
		}
		s.WaveColor = c
	}
	if f.Waveform.MaxSnapScan != nil {
		s.MaxSnapScanSeconds = *f.Waveform.MaxSnapScan
	}

	if f.Pipeline.QueueCapacity != nil {
		s.QueueCapacity = *f.Pipeline.QueueCapacity
	}

	if f.Overlay.Title != nil {
		s.Title = *f.Overlay.Title
	}
	if f.Overlay.Color != nil {
		c, err := ParseRGB(*f.Overlay.Color)
		if err != nil {
			return s, fmt.Errorf("overlay.color: %w", err)
		}
		s.TextColor = c
	}

	return s, nil
}
