package audio

// Oversample2x expands samples for playback at twice the capture rate.
// Every source sample is followed by an interpolated midpoint (the average of
// it and its successor), which moves the DAC reconstruction artifact an
// octave up while keeping quantisation error low. The final sample is simply
// repeated.
func Oversample2x(samples []int16) []int16 {
	if len(samples) == 0 {
		return nil
	}

	out := make([]int16, 2*len(samples))
	for i, s := range samples {
		out[2*i] = s

		if i+1 < len(samples) {
			out[2*i+1] = int16((int(s) + int(samples[i+1])) / 2)
		} else {
			out[2*i+1] = s
		}
	}

	return out
}

// ApplyVolume scales samples by a 0..127 volume setting into a new slice,
// leaving the captured buffer untouched. Volume 127 returns a plain copy.
func ApplyVolume(samples []int16, volume int) []int16 {
	if volume < 0 {
		volume = 0
	}
	if volume > 127 {
		volume = 127
	}

	out := make([]int16, len(samples))
	if volume == 127 {
		copy(out, samples)
		return out
	}

	for i, s := range samples {
		out[i] = int16(int(s) * volume / 127)
	}

	return out
}
