package audio

// Average returns the mean of count consecutive samples starting at start.
// The division truncates toward zero; it is not rounded. The sum is taken in
// a wide accumulator so loud multichannel input cannot wrap.
func Average(samples []int16, start, count int) int16 {
	sum := 0
	for _, s := range samples[start : start+count] {
		sum += int(s)
	}
	return int16(sum / count)
}

// AverageBounded is Average with out-of-range windows reading as silence.
// It returns 0 whenever start+count >= total, which also means the very last
// frame of a buffer always reads as 0.
func AverageBounded(samples []int16, start, count, total int) int16 {
	if count <= 0 || start < 0 || start+count >= total || start+count > len(samples) {
		return 0
	}
	return Average(samples, start, count)
}
