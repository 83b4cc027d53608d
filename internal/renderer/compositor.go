package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/linuxmatters/oscigen/internal/audio"
	"github.com/linuxmatters/oscigen/internal/config"
)

// Compositor draws every waveform track of one frame into a single RGBA
// image. It is not safe for concurrent use; the frame buffer and scratch
// slices are reused between calls.
type Compositor struct {
	width, height int

	img *image.RGBA
	dc  *gg.Context
	bg  *image.RGBA // Optional pre-scaled background, nil for solid colour

	background color.RGBA
	wave       color.RGBA

	sampler Sampler
	mesher  Mesher
	overlay *TitleOverlay

	points []Point
	mesh   []Triangle
	tris   []Triangle
}

// NewCompositor builds a compositor from validated settings. A configured
// background image that cannot be loaded is an error.
func NewCompositor(s config.Settings) (*Compositor, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))

	c := &Compositor{
		width:      s.Width,
		height:     s.Height,
		img:        img,
		dc:         gg.NewContextForRGBA(img),
		background: rgba(s.BackgroundColor),
		wave:       rgba(s.WaveColor),
		sampler: Sampler{
			Width:              s.Width,
			WindowLength:       s.SampleWindowLength,
			Smoothing:          s.Smoothing,
			MaxSnapScanSeconds: s.MaxSnapScanSeconds,
		},
		mesher: Mesher{
			Thickness:   s.Thickness,
			MaxSegments: s.MaxSegments,
		},
	}
	c.dc.SetFillRule(gg.FillRuleWinding)

	if s.BackgroundImage != "" {
		bg, err := LoadBackgroundImage(s.BackgroundImage, s.Width, s.Height)
		if err != nil {
			return nil, fmt.Errorf("loading background image: %w", err)
		}
		c.bg = bg
	}

	if s.Title != "" {
		face, err := LoadTitleFace(config.TitleFontSize)
		if err != nil {
			return nil, fmt.Errorf("loading title font: %w", err)
		}
		c.overlay = NewTitleOverlay(s.Title, face, rgba(s.TextColor), config.TitleMargin)
	}

	return c, nil
}

func rgba(c config.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// WaveformTracks returns the tracks that get drawn. With more than one input
// the first is the mixed master that only supplies the soundtrack.
func WaveformTracks(tracks []*audio.Track) []*audio.Track {
	if len(tracks) > 1 {
		return tracks[1:]
	}
	return tracks
}

// Draw renders the frame starting at sampleIndex (per-channel samples) into
// the compositor's image.
func (c *Compositor) Draw(tracks []*audio.Track, sampleIndex int) {
	if c.bg != nil {
		copy(c.img.Pix, c.bg.Pix)
	} else {
		c.dc.SetColor(c.background)
		c.dc.Clear()
	}

	c.tris = c.tris[:0]
	waves := WaveformTracks(tracks)
	for i, t := range waves {
		band := Layout(c.width, c.height, i, len(waves))
		c.points = c.sampler.Sample(t, sampleIndex, band, c.points)
		c.mesh = c.mesher.Build(c.points, c.mesh)
		c.tris = append(c.tris, c.mesh...)
	}

	c.fill(c.tris)

	if c.overlay != nil {
		c.overlay.Draw(c.img)
	}
}

// fill rasterises tris as one path. Every triangle is wound the same way so
// overlaps add under the non-zero rule instead of punching holes.
func (c *Compositor) fill(tris []Triangle) {
	if len(tris) == 0 {
		return
	}

	c.dc.ClearPath()
	for _, t := range tris {
		a, b, d := t[0], t[1], t[2]
		if b.Sub(a).Cross(d.Sub(a)) < 0 {
			b, d = d, b
		}
		c.dc.MoveTo(a.X, a.Y)
		c.dc.LineTo(b.X, b.Y)
		c.dc.LineTo(d.X, d.Y)
		c.dc.ClosePath()
	}
	c.dc.SetColor(c.wave)
	c.dc.Fill()
}

// Render draws a frame and returns a copy of its pixels: row-major RGBA,
// Width*Height*4 bytes, owned by the caller.
func (c *Compositor) Render(tracks []*audio.Track, sampleIndex int) []byte {
	return c.RenderInto(tracks, sampleIndex, nil)
}

// RenderInto is Render copying into dst, which is reallocated only when too
// small.
func (c *Compositor) RenderInto(tracks []*audio.Track, sampleIndex int, dst []byte) []byte {
	c.Draw(tracks, sampleIndex)
	if cap(dst) < len(c.img.Pix) {
		dst = make([]byte, len(c.img.Pix))
	}
	dst = dst[:len(c.img.Pix)]
	copy(dst, c.img.Pix)
	return dst
}

// Image returns the compositor's frame buffer. It is overwritten by the next
// Draw or Render.
func (c *Compositor) Image() *image.RGBA {
	return c.img
}

// Triangles returns the draw list of the last frame.
func (c *Compositor) Triangles() []Triangle {
	return c.tris
}

// Snapshot renders one frame and saves it as a PNG.
func (c *Compositor) Snapshot(tracks []*audio.Track, sampleIndex int, path string) error {
	c.Draw(tracks, sampleIndex)
	if err := c.dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}
