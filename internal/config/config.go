package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Video settings
const (
	Width  = 1920
	Height = 1080
	FPS    = 60
)

// Waveform settings
const (
	SampleWindowLength = 1500 // Samples spanned horizontally by one track's waveform
	Thickness          = 4.0  // Stroke width in pixels
	MaxSegments        = 8    // Fan resolution for a 180 degree joint
	Smoothing          = true // Average two adjacent samples per point
)

// Pipeline settings
const (
	QueueCapacity = 32 // Frames buffered between renderer and encoder (~250MB at 1080p)

	// MaxSnapScanSeconds caps the zero-crossing walk. One second of audio is far
	// beyond any audible period; anything longer is silence or DC offset.
	MaxSnapScanSeconds = 1.0
)

// Appearance
const (
	// Waveform stroke colour (white, as the oscilloscope original)
	WaveColorR = 255
	WaveColorG = 255
	WaveColorB = 255

	// Background (black)
	BackgroundColorR = 0
	BackgroundColorG = 0
	BackgroundColorB = 0

	// Title overlay (brand yellow #F8B31D)
	TextColorR = 248
	TextColorG = 179
	TextColorB = 29

	TitleFontSize = 48
	TitleMargin   = 30 // Pixels from the top edge to the title baseline box
)

// Output
const (
	DefaultOutput = "output.mp4"
	FFmpegBinary  = "ffmpeg"
)

// RGB is an 8-bit colour without alpha.
type RGB struct {
	R, G, B uint8
}

// Settings is the resolved render configuration for one run.
type Settings struct {
	Width              int
	Height             int
	FPS                int
	SampleWindowLength int
	Thickness          float64
	MaxSegments        int
	Smoothing          bool
	QueueCapacity      int
	MaxSnapScanSeconds float64

	WaveColor       RGB
	BackgroundColor RGB
	TextColor       RGB
	Title           string

	// BackgroundImage is an optional PNG scaled to fill the frame beneath
	// the waveform. Empty means a solid BackgroundColor.
	BackgroundImage string

	FFmpegPath string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Width:              Width,
		Height:             Height,
		FPS:                FPS,
		SampleWindowLength: SampleWindowLength,
		Thickness:          Thickness,
		MaxSegments:        MaxSegments,
		Smoothing:          Smoothing,
		QueueCapacity:      QueueCapacity,
		MaxSnapScanSeconds: MaxSnapScanSeconds,
		WaveColor:          RGB{WaveColorR, WaveColorG, WaveColorB},
		BackgroundColor:    RGB{BackgroundColorR, BackgroundColorG, BackgroundColorB},
		TextColor:          RGB{TextColorR, TextColorG, TextColorB},
		FFmpegPath:         FFmpegBinary,
	}
}

// FrameSize returns the byte length of one RGBA frame.
func (s Settings) FrameSize() int {
	return s.Width * s.Height * 4
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	var errs []error
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid dimensions: %dx%d", s.Width, s.Height))
	}
	if s.Width%2 != 0 || s.Height%2 != 0 {
		// yuv420p needs even dimensions
		errs = append(errs, fmt.Errorf("dimensions must be even: %dx%d", s.Width, s.Height))
	}
	if s.FPS <= 0 {
		errs = append(errs, fmt.Errorf("invalid framerate: %d", s.FPS))
	}
	if s.SampleWindowLength < 3 {
		errs = append(errs, fmt.Errorf("sample window length must be at least 3, got %d", s.SampleWindowLength))
	}
	if s.Thickness <= 0 {
		errs = append(errs, fmt.Errorf("thickness must be positive, got %g", s.Thickness))
	}
	if s.MaxSegments < 1 {
		errs = append(errs, fmt.Errorf("max segments must be at least 1, got %d", s.MaxSegments))
	}
	if s.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("queue capacity must be at least 1, got %d", s.QueueCapacity))
	}
	if s.MaxSnapScanSeconds < 0 {
		errs = append(errs, fmt.Errorf("max snap scan must not be negative, got %g", s.MaxSnapScanSeconds))
	}
	return errors.Join(errs...)
}

// ParseHexColor parses "RRGGBB" or "#RRGGBB".
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// ParseRGB is ParseHexColor returning an RGB.
func ParseRGB(s string) (RGB, error) {
	r, g, b, err := ParseHexColor(s)
	if err != nil {
		return RGB{}, err
	}
	return RGB{r, g, b}, nil
}
