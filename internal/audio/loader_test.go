package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes 16-bit PCM to a temp file and returns its path.
func writeTestWAV(t *testing.T, name string, sampleRate, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing WAV encoder: %v", err)
	}
	return path
}

func TestLoadTrack_WAV(t *testing.T) {
	data := []int{0, 100, -100, 32767, -32768, 5, 6, 7}
	path := writeTestWAV(t, "stereo.wav", 48000, 2, data)

	tr, err := LoadTrack(path)
	if err != nil {
		t.Fatalf("LoadTrack failed: %v", err)
	}

	if tr.SampleRate() != 48000 {
		t.Errorf("SampleRate = %d, want 48000", tr.SampleRate())
	}
	if tr.Channels() != 2 {
		t.Errorf("Channels = %d, want 2", tr.Channels())
	}
	if tr.SampleCount() != len(data) {
		t.Fatalf("SampleCount = %d, want %d", tr.SampleCount(), len(data))
	}
	for i, want := range data {
		if got := tr.Samples()[i]; int(got) != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
	if tr.Path() != path {
		t.Errorf("Path = %q, want %q", tr.Path(), path)
	}
}

func TestLoadTrack_UnsupportedExtension(t *testing.T) {
	_, err := LoadTrack("song.ogg")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadTrack_Missing(t *testing.T) {
	if _, err := LoadTrack(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadTrack_CorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")
	if err := os.WriteFile(path, []byte("this is not a riff file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTrack(path); err == nil {
		t.Error("expected error for corrupt WAV")
	}
}

// TestLoadTracks_SkipsBadFiles verifies a bad input is reported and skipped
// while the remaining inputs keep their order.
func TestLoadTracks_SkipsBadFiles(t *testing.T) {
	good1 := writeTestWAV(t, "a.wav", 44100, 1, []int{1, 2, 3})
	bad := filepath.Join(t.TempDir(), "missing.wav")
	good2 := writeTestWAV(t, "b.wav", 22050, 1, []int{4, 5})

	var skipped []string
	tracks, err := LoadTracks([]string{good1, bad, good2}, func(name string, err error) {
		skipped = append(skipped, name)
	})
	if err != nil {
		t.Fatalf("LoadTracks failed: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("loaded %d tracks, want 2", len(tracks))
	}
	if tracks[0].Path() != good1 || tracks[1].Path() != good2 {
		t.Errorf("track order wrong: %s, %s", tracks[0].Path(), tracks[1].Path())
	}
	if len(skipped) != 1 || skipped[0] != bad {
		t.Errorf("skipped = %v, want [%s]", skipped, bad)
	}
}

func TestLoadTracks_NoneLoaded(t *testing.T) {
	_, err := LoadTracks([]string{"nope.wav", "nope.mp3"}, nil)
	if !errors.Is(err, ErrNoTracks) {
		t.Errorf("got %v, want ErrNoTracks", err)
	}
}

// chunkDecoder serves fixed chunks from memory.
type chunkDecoder struct {
	chunks [][]int16
	closed bool
}

func (d *chunkDecoder) ReadChunk(int) ([]int16, error) {
	if len(d.chunks) == 0 {
		return nil, io.EOF
	}
	c := d.chunks[0]
	d.chunks = d.chunks[1:]
	return c, nil
}
func (d *chunkDecoder) SampleRate() int  { return 8000 }
func (d *chunkDecoder) NumChannels() int { return 1 }
func (d *chunkDecoder) Close() error     { d.closed = true; return nil }

func TestReadAll_ConcatenatesChunks(t *testing.T) {
	dec := &chunkDecoder{chunks: [][]int16{{1, 2}, {3}, {4, 5, 6}}}
	tr, err := ReadAll("mem", dec)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	want := []int16{1, 2, 3, 4, 5, 6}
	if len(tr.Samples()) != len(want) {
		t.Fatalf("got %d samples, want %d", len(tr.Samples()), len(want))
	}
	for i := range want {
		if tr.Samples()[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, tr.Samples()[i], want[i])
		}
	}
}
