package audio

import (
	"errors"
	"fmt"
)

// ErrBufferFull is returned by Append when the buffer has reached capacity.
// Reaching capacity is not a fault: it is the normal trigger to stop a
// recording and begin playback.
var ErrBufferFull = errors.New("sample buffer full")

// SampleBuffer is a fixed-capacity store for one recording window of PCM
// samples. Capacity is fixed at construction; Reset is a logical reset and
// never reallocates. The buffer is owned by the mode controller for the
// duration of one record/playback cycle: written only while listening, read
// only while playing, so no locking is required.
type SampleBuffer struct {
	samples []int16
	length  int
}

// NewSampleBuffer creates a sample buffer with the given fixed capacity
func NewSampleBuffer(capacity int) (*SampleBuffer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1 sample, got %d", capacity)
	}

	return &SampleBuffer{
		samples: make([]int16, capacity),
	}, nil
}

// Reset logically clears the buffer for the next recording
func (b *SampleBuffer) Reset() {
	b.length = 0
}

// Append stores one sample, failing with ErrBufferFull at capacity
func (b *SampleBuffer) Append(sample int16) error {
	if b.length == len(b.samples) {
		return ErrBufferFull
	}

	b.samples[b.length] = sample
	b.length++
	return nil
}

// AppendChunk stores as many samples from chunk as fit, returning the number
// stored and ErrBufferFull if the chunk was truncated
func (b *SampleBuffer) AppendChunk(chunk []int16) (int, error) {
	n := copy(b.samples[b.length:], chunk)
	b.length += n

	if n < len(chunk) {
		return n, ErrBufferFull
	}
	return n, nil
}

// Samples returns the ordered captured samples as a read-only view for
// playback. The view is invalidated by the next Reset.
func (b *SampleBuffer) Samples() []int16 {
	return b.samples[:b.length]
}

// Len returns the number of captured samples
func (b *SampleBuffer) Len() int {
	return b.length
}

// Cap returns the fixed capacity in samples
func (b *SampleBuffer) Cap() int {
	return len(b.samples)
}

// Full reports whether the buffer has reached capacity
func (b *SampleBuffer) Full() bool {
	return b.length == len(b.samples)
}

// PrerollBuffer is the circular buffer written while listening for the start
// of speech. When speech is detected its contents are unrolled over the start
// of the speech buffer so the onset of the utterance is not lost.
type PrerollBuffer struct {
	samples []int16
	pos     int // next write position
	count   int // valid samples, up to len(samples)
}

// NewPrerollBuffer creates a circular preroll buffer of the given size
func NewPrerollBuffer(size int) (*PrerollBuffer, error) {
	if size < 1 {
		return nil, fmt.Errorf("preroll size must be at least 1 sample, got %d", size)
	}

	return &PrerollBuffer{
		samples: make([]int16, size),
	}, nil
}

// Reset discards all buffered samples
func (p *PrerollBuffer) Reset() {
	p.pos = 0
	p.count = 0
}

// Write stores one sample, overwriting the oldest once the buffer is full
func (p *PrerollBuffer) Write(sample int16) {
	p.samples[p.pos] = sample
	p.pos = (p.pos + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// Len returns the number of valid buffered samples
func (p *PrerollBuffer) Len() int {
	return p.count
}

// UnrollInto copies the buffered samples, oldest first, into the start of the
// speech buffer. The speech buffer must be freshly reset and strictly larger
// than the preroll window. Returns the number of samples transferred.
func (p *PrerollBuffer) UnrollInto(dst *SampleBuffer) (int, error) {
	if dst.Len() != 0 {
		return 0, fmt.Errorf("destination buffer must be empty, has %d samples", dst.Len())
	}

	if p.count > dst.Cap() {
		return 0, fmt.Errorf("destination capacity %d cannot hold %d preroll samples", dst.Cap(), p.count)
	}

	// The oldest sample sits at the write position once the ring has
	// wrapped, otherwise at index zero.
	if p.count == len(p.samples) {
		if _, err := dst.AppendChunk(p.samples[p.pos:]); err != nil {
			return 0, err
		}
		if _, err := dst.AppendChunk(p.samples[:p.pos]); err != nil {
			return 0, err
		}
	} else {
		if _, err := dst.AppendChunk(p.samples[:p.count]); err != nil {
			return 0, err
		}
	}

	return p.count, nil
}
