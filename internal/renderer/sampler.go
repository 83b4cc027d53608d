package renderer

import (
	"math"

	"github.com/linuxmatters/oscigen/internal/audio"
)

// Point is a position in output pixel space.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Perp returns p rotated a quarter turn, (y, -x).
func (p Point) Perp() Point { return Point{p.Y, -p.X} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Cross returns the z component of p×q. It is positive when q lies
// counter-clockwise of p in a y-up frame.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

func (p Point) finite() bool { return !math.IsNaN(p.X+p.Y) && !math.IsInf(p.X+p.Y, 0) }

// Band is the vertical region one track's waveform occupies.
type Band struct {
	Index int
	Count int
	Width int

	Height         float64 // Output height divided evenly between bands
	VerticalCenter float64 // Y of the zero line
	InvAmplitude   float64 // Pixels per unit of 16-bit amplitude
}

// Layout places band index of count. The first band's centre sits at
// height/(count+1) and each further band is one band height lower. With more
// than one band every centre moves up by a quarter band so the stack stays
// visually balanced rather than hugging the bottom edge.
func Layout(width, height, index, count int) Band {
	bandHeight := float64(height) / float64(count)
	center := float64(height/(count+1)) + bandHeight*float64(index)
	if count > 1 {
		center -= bandHeight * 0.25
	}

	return Band{
		Index:          index,
		Count:          count,
		Width:          width,
		Height:         bandHeight,
		VerticalCenter: center,
		InvAmplitude:   (1.0 / math.MaxInt16) * bandHeight,
	}
}

// Sampler turns a window of one track into waveform points.
type Sampler struct {
	Width        int  // Output width in pixels
	WindowLength int  // Raw sample positions spanned horizontally
	Smoothing    bool // Average pairs of adjacent sample frames, halving the point count

	// MaxSnapScanSeconds caps the zero-crossing search; 0 disables the cap.
	MaxSnapScanSeconds float64
}

// PointCount returns how many points Sample produces.
func (s Sampler) PointCount() int {
	if s.Smoothing {
		return (s.WindowLength + 1) / 2
	}
	return s.WindowLength
}

// Sample appends the waveform of t at frameSampleIndex (in per-channel
// samples) to dst[:0] and returns it. Positions past the end of the track
// read as silence, drawing a flat line on the band's centre.
func (s Sampler) Sample(t *audio.Track, frameSampleIndex int, band Band, dst []Point) []Point {
	dst = dst[:0]
	channels := t.Channels()
	length := s.WindowLength
	interval := float64(s.Width) / float64(length)

	playback := frameSampleIndex * channels
	playback += audio.SnapOffset(t, playback, length, audio.MaxScanFor(t, s.MaxSnapScanSeconds))

	if !s.Smoothing {
		for i := 0; i < length; i++ {
			amp := t.Average(playback + i*channels)
			dst = append(dst, Point{
				X: float64(i) * interval,
				Y: band.VerticalCenter - float64(amp)*band.InvAmplitude,
			})
		}
		return dst
	}

	const averageCount = 2
	for i := 0; i < length; i += averageCount {
		amp := 0
		for k := 0; k < averageCount; k++ {
			amp += int(t.Average(playback + (i+k)*channels))
		}
		amp /= averageCount

		dst = append(dst, Point{
			X: float64(i) * interval,
			Y: band.VerticalCenter - float64(amp)*band.InvAmplitude,
		})
	}

	return dst
}
