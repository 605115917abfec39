package audio

import "fmt"

// AttenuatorConfig contains the frame geometry and thresholds for the
// silence attenuation pass
type AttenuatorConfig struct {
	FrameSamples    int // samples per frame
	SpeechThreshold int // absolute delta from the zero estimate to count as speech
	SpeechPerFrame  int // speech samples that disqualify a frame from attenuation
	ZeroEstimate    int // seed estimate of the sample value representing silence
}

// Attenuator flattens silent regions of a recorded buffer before playback.
// It makes two passes: the first identifies silent frames and derives a new
// zero estimate from their average sample value, the second sets every sample
// of each silent frame to that estimate. The refined estimate is retained
// across recordings and can be fed back into the silence detector.
type Attenuator struct {
	config AttenuatorConfig
	zero   int
}

// NewAttenuator creates an attenuator seeded with the configured zero estimate
func NewAttenuator(config AttenuatorConfig) (*Attenuator, error) {
	if config.FrameSamples < 1 {
		return nil, fmt.Errorf("frame samples must be at least 1, got %d", config.FrameSamples)
	}

	if config.SpeechThreshold < 1 {
		return nil, fmt.Errorf("speech threshold must be at least 1, got %d", config.SpeechThreshold)
	}

	if config.SpeechPerFrame < 1 {
		return nil, fmt.Errorf("speech samples per frame must be at least 1, got %d", config.SpeechPerFrame)
	}

	return &Attenuator{
		config: config,
		zero:   config.ZeroEstimate,
	}, nil
}

// ZeroEstimate returns the current estimate of the silent sample value
func (a *Attenuator) ZeroEstimate() int {
	return a.zero
}

// Apply attenuates silent frames of samples in place and returns the number
// of frames flattened. Only whole frames are considered; a trailing partial
// frame is left untouched.
func (a *Attenuator) Apply(samples []int16) int {
	frame := a.config.FrameSamples
	numFrames := len(samples) / frame
	if numFrames == 0 {
		return 0
	}

	silentFrames := make([]int, 0, numFrames)
	silenceSum := 0
	silenceCount := 0

	// First pass: find silent frames and accumulate their sample values.
	for f := 0; f < numFrames; f++ {
		start := f * frame
		speech := 0
		sum := 0
		silent := true

		for i := start; i < start+frame; i++ {
			sum += int(samples[i])

			delta := int(samples[i]) - a.zero
			if delta < 0 {
				delta = -delta
			}
			if delta >= a.config.SpeechThreshold {
				speech++
				if speech >= a.config.SpeechPerFrame {
					silent = false
					break
				}
			}
		}

		if silent {
			silentFrames = append(silentFrames, start)
			silenceSum += sum
			silenceCount += frame
		}
	}

	if silenceCount == 0 {
		return 0
	}

	// Second pass: flatten each silent frame to the refined estimate.
	a.zero = silenceSum / silenceCount
	for _, start := range silentFrames {
		for i := start; i < start+frame; i++ {
			samples[i] = int16(a.zero)
		}
	}

	return len(silentFrames)
}
