package audio

// SnapOffset finds how far to shift the read position so the rendered window
// starts on the same phase every frame. Starting one window length past
// playbackIndex it walks forward one sample frame at a time, first over
// positive values and then over negative ones, and returns the distance
// walked in raw (interleaved) samples.
//
// The walk is linear in the length of any run of same-signed samples. With
// maxScan > 0 a walk longer than maxScan gives up and returns 0, which keeps
// DC-offset input from scanning the whole file every frame. With maxScan <= 0
// the walk is unbounded; it still terminates because samples past the end of
// the track read as 0.
func SnapOffset(t *Track, playbackIndex, windowLength, maxScan int) int {
	start := playbackIndex + windowLength
	step := t.channels
	snap := 0

	for t.Average(start+snap) > 0 {
		snap += step
		if maxScan > 0 && snap > maxScan {
			return 0
		}
	}
	for t.Average(start+snap) < 0 {
		snap += step
		if maxScan > 0 && snap > maxScan {
			return 0
		}
	}

	return snap
}

// MaxScanFor converts a cap in seconds to raw samples for t.
func MaxScanFor(t *Track, seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(seconds * float64(t.sampleRate) * float64(t.channels))
}
