package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/oscigen/internal/audio"
	"github.com/linuxmatters/oscigen/internal/config"
)

func smallSettings() config.Settings {
	s := config.Default()
	s.Width = 64
	s.Height = 36
	s.SampleWindowLength = 32
	return s
}

func pixelAt(pix []byte, width, x, y int) color.RGBA {
	i := (y*width + x) * 4
	return color.RGBA{pix[i], pix[i+1], pix[i+2], pix[i+3]}
}

func TestRender_FrameSize(t *testing.T) {
	s := smallSettings()
	c, err := NewCompositor(s)
	if err != nil {
		t.Fatal(err)
	}
	tr := newTrack(t, 1000, 1, make([]int16, 1000))

	pix := c.Render([]*audio.Track{tr}, 0)
	if len(pix) != s.FrameSize() {
		t.Errorf("frame is %d bytes, want %d", len(pix), s.FrameSize())
	}
}

func TestRender_SilentTrackDrawsCentreLine(t *testing.T) {
	s := smallSettings()
	c, err := NewCompositor(s)
	if err != nil {
		t.Fatal(err)
	}
	tr := newTrack(t, 1000, 1, make([]int16, 1000))

	pix := c.Render([]*audio.Track{tr}, 0)

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	// Centre 18, thickness 4: rows 16..19 fully inside the stroke
	for _, x := range []int{2, 32, 55} {
		if got := pixelAt(pix, s.Width, x, 17); got != white {
			t.Errorf("pixel (%d,17) = %v, want white", x, got)
		}
	}
	for _, y := range []int{0, 10, 30, 35} {
		if got := pixelAt(pix, s.Width, 32, y); got != black {
			t.Errorf("pixel (32,%d) = %v, want background", y, got)
		}
	}
}

// TestRender_ThreeInputsTwoBands draws two waveform bands and leaves the gap
// between them empty. The master track is loud but must not be drawn.
func TestRender_ThreeInputsTwoBands(t *testing.T) {
	s := smallSettings()
	c, err := NewCompositor(s)
	if err != nil {
		t.Fatal(err)
	}
	master := newTrack(t, 1000, 1, constant(1000, 30000))
	a := newTrack(t, 1000, 1, make([]int16, 1000))
	b := newTrack(t, 1000, 1, make([]int16, 1000))

	pix := c.Render([]*audio.Track{master, a, b}, 0)

	// Bands centred at 7.5 and 25.5
	if got := pixelAt(pix, s.Width, 32, 7); got.R != 255 {
		t.Errorf("first band centre = %v, want stroke", got)
	}
	if got := pixelAt(pix, s.Width, 32, 25); got.R != 255 {
		t.Errorf("second band centre = %v, want stroke", got)
	}
	if got := pixelAt(pix, s.Width, 32, 16); got.R != 0 {
		t.Errorf("gap between bands = %v, want background", got)
	}
	if got := len(c.Triangles()); got == 0 {
		t.Error("no triangles recorded")
	}
}

func TestWaveformTracks(t *testing.T) {
	a := newTrack(t, 1000, 1, nil)
	b := newTrack(t, 1000, 1, nil)
	c := newTrack(t, 1000, 1, nil)

	if got := WaveformTracks([]*audio.Track{a}); len(got) != 1 || got[0] != a {
		t.Error("single input should draw the master")
	}
	got := WaveformTracks([]*audio.Track{a, b, c})
	if len(got) != 2 || got[0] != b || got[1] != c {
		t.Error("multiple inputs should skip the master")
	}
}

// TestRender_OwnedCopy checks that each returned frame is independent of the
// compositor's buffer and that rendering is deterministic.
func TestRender_OwnedCopy(t *testing.T) {
	s := smallSettings()
	c, err := NewCompositor(s)
	if err != nil {
		t.Fatal(err)
	}

	samples := make([]int16, 4000)
	for i := range samples {
		samples[i] = int16(12000 * math.Sin(2*math.Pi*float64(i)/40))
	}
	tr := newTrack(t, 1000, 1, samples)
	tracks := []*audio.Track{tr}

	first := c.Render(tracks, 100)
	snapshot := append([]byte(nil), first...)

	_ = c.Render(tracks, 900)
	if !bytes.Equal(first, snapshot) {
		t.Fatal("rendering another frame modified a returned frame")
	}

	again := c.Render(tracks, 100)
	if !bytes.Equal(first, again) {
		t.Error("rendering the same position twice differs")
	}
}

func TestSnapshot(t *testing.T) {
	s := smallSettings()
	c, err := NewCompositor(s)
	if err != nil {
		t.Fatal(err)
	}
	tr := newTrack(t, 1000, 1, make([]int16, 1000))

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := c.Snapshot([]*audio.Track{tr}, 0, path); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("snapshot is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != s.Width || b.Dy() != s.Height {
		t.Errorf("snapshot is %dx%d, want %dx%d", b.Dx(), b.Dy(), s.Width, s.Height)
	}
}

func TestBackgroundImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 200, 0, 0, 255
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s := smallSettings()
	s.BackgroundImage = path
	c, err := NewCompositor(s)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	tr := newTrack(t, 1000, 1, make([]int16, 1000))
	pix := c.Render([]*audio.Track{tr}, 0)

	got := pixelAt(pix, s.Width, 1, 1)
	if got.R < 198 || got.R > 202 || got.G != 0 || got.B != 0 {
		t.Errorf("background pixel = %v, want scaled image colour", got)
	}

	s.BackgroundImage = filepath.Join(t.TempDir(), "missing.png")
	if _, err := NewCompositor(s); err == nil {
		t.Error("expected error for missing background image")
	}
}

func TestTitleOverlay(t *testing.T) {
	s := config.Default()
	s.Width = 320
	s.Height = 180
	s.SampleWindowLength = 64
	s.Title = "Oscilloscope"

	c, err := NewCompositor(s)
	if err != nil {
		t.Fatal(err)
	}
	tr := newTrack(t, 1000, 1, make([]int16, 1000))
	pix := c.Render([]*audio.Track{tr}, 0)

	// The waveform sits at row 90; anything lit above row 80 is text
	lit := 0
	for y := 0; y < 80; y++ {
		for x := 0; x < s.Width; x++ {
			if pixelAt(pix, s.Width, x, y).R > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("title overlay drew nothing")
	}
	t.Logf("title lit %d pixels", lit)
}

func BenchmarkRender(b *testing.B) {
	s := config.Default()
	c, err := NewCompositor(s)
	if err != nil {
		b.Fatal(err)
	}

	samples := make([]int16, 44100*2)
	for i := range samples {
		samples[i] = int16(20000 * math.Sin(2*math.Pi*float64(i)/220))
	}
	tr := newTrack(b, 44100, 2, samples)
	tracks := []*audio.Track{tr}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Draw(tracks, (i*735)%20000)
	}
}
