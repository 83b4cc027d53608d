package audio

// Decoder is implemented by every supported input format. Decoding is a
// black box to the renderer: all it needs is interleaved 16-bit samples plus
// the rate and channel count.
type Decoder interface {
	// ReadChunk reads up to numFrames sample frames (numFrames × channels raw
	// samples) as interleaved int16. Returns io.EOF when no samples remain.
	ReadChunk(numFrames int) ([]int16, error)

	// SampleRate returns the audio sample rate in Hz
	SampleRate() int

	// NumChannels returns the number of interleaved channels
	NumChannels() int

	// Close releases the underlying file
	Close() error
}

// toInt16 rescales a signed PCM value of the given bit depth to 16 bits.
func toInt16(v int, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(v)
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	default:
		return int16(v << (16 - bitDepth))
	}
}
