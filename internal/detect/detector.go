package detect

import "fmt"

// SilenceDetector decides when a recording should stop. A sample is quiet
// when its absolute delta from the zero estimate is below the speech
// threshold; the detector signals stop once minRun consecutive quiet samples
// have been observed. The run resets on any speech-sized sample, so a single
// short pause never ends a recording.
type SilenceDetector struct {
	threshold int
	zero      int
	minRun    int

	run uint64 // current consecutive quiet samples

	// Statistics
	observed uint64
	speech   uint64
}

// NewSilenceDetector creates a silence detector. threshold is the absolute
// amplitude delta that counts as speech, zero the sample value representing
// silence, and minRun the consecutive quiet samples required to stop.
func NewSilenceDetector(threshold, zero, minRun int) (*SilenceDetector, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", threshold)
	}

	if minRun < 1 {
		return nil, fmt.Errorf("minimum silence run must be at least 1 sample, got %d", minRun)
	}

	return &SilenceDetector{
		threshold: threshold,
		zero:      zero,
		minRun:    minRun,
	}, nil
}

// Observe feeds one captured sample and reports whether the recording should
// stop now
func (d *SilenceDetector) Observe(sample int16) bool {
	d.observed++

	delta := int(sample) - d.zero
	if delta < 0 {
		delta = -delta
	}

	if delta >= d.threshold {
		d.speech++
		d.run = 0
		return false
	}

	d.run++
	return d.run >= uint64(d.minRun)
}

// Run returns the current consecutive quiet sample count. Immediately after
// Observe returns true this equals the configured minimum run, which lets the
// caller trim the trailing silence from the recording.
func (d *SilenceDetector) Run() int {
	return int(d.run)
}

// Reset clears the detector state at the start of a listening phase
func (d *SilenceDetector) Reset() {
	d.run = 0
	d.observed = 0
	d.speech = 0
}

// SetZeroEstimate updates the silence reference value, typically after the
// attenuation pass has refined it
func (d *SilenceDetector) SetZeroEstimate(zero int) {
	d.zero = zero
}

// ZeroEstimate returns the current silence reference value
func (d *SilenceDetector) ZeroEstimate() int {
	return d.zero
}

// Observed returns the number of samples fed since the last reset
func (d *SilenceDetector) Observed() uint64 {
	return d.observed
}

// SpeechSamples returns the number of speech-sized samples since the last reset
func (d *SilenceDetector) SpeechSamples() uint64 {
	return d.speech
}

// StartDetector decides when speech has begun. It keeps a running count of
// speech-sized samples that is incremented on speech and decremented (to
// zero) on quiet, so isolated clicks age out of the count while genuine
// speech accumulates. The detector fires when the count reaches the trigger.
type StartDetector struct {
	threshold int
	zero      int
	trigger   int

	count int
}

// NewStartDetector creates a start detector. trigger is the absolute speech
// sample count, normally derived as a percentage of the preroll window.
func NewStartDetector(threshold, zero, trigger int) (*StartDetector, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", threshold)
	}

	if trigger < 1 {
		return nil, fmt.Errorf("trigger must be at least 1 sample, got %d", trigger)
	}

	return &StartDetector{
		threshold: threshold,
		zero:      zero,
		trigger:   trigger,
	}, nil
}

// Observe feeds one sample and reports whether speech has started
func (d *StartDetector) Observe(sample int16) bool {
	delta := int(sample) - d.zero
	if delta < 0 {
		delta = -delta
	}

	if delta >= d.threshold {
		d.count++
	} else if d.count > 0 {
		d.count--
	}

	return d.count >= d.trigger
}

// Reset clears the speech sample count
func (d *StartDetector) Reset() {
	d.count = 0
}

// SetZeroEstimate updates the silence reference value
func (d *StartDetector) SetZeroEstimate(zero int) {
	d.zero = zero
}
