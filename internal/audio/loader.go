package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNoTracks is returned by LoadTracks when none of the inputs decoded.
var ErrNoTracks = errors.New("no valid input files")

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// readChunkFrames is the number of sample frames requested per decoder read.
const readChunkFrames = 16384

// OpenDecoder picks a decoder from the file extension.
func OpenDecoder(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// LoadTrack decodes a whole file into memory.
func LoadTrack(filename string) (*Track, error) {
	dec, err := OpenDecoder(filename)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return ReadAll(filename, dec)
}

// ReadAll drains a decoder into a Track.
func ReadAll(name string, dec Decoder) (*Track, error) {
	var samples []int16
	for {
		chunk, err := dec.ReadChunk(readChunkFrames)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		samples = append(samples, chunk...)
	}

	return NewTrack(name, dec.SampleRate(), dec.NumChannels(), samples)
}

// SkipFunc is told about each input that failed to load.
type SkipFunc func(filename string, err error)

// LoadTracks decodes every file in order. Files that fail are reported to
// onSkip and left out; the first successfully loaded file becomes the master.
// ErrNoTracks is returned only when nothing loaded.
func LoadTracks(filenames []string, onSkip SkipFunc) ([]*Track, error) {
	var tracks []*Track
	for _, name := range filenames {
		t, err := LoadTrack(name)
		if err != nil {
			if onSkip != nil {
				onSkip(name, err)
			}
			continue
		}
		tracks = append(tracks, t)
	}

	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	return tracks, nil
}
