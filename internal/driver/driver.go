package driver

import (
	"context"
	"errors"
	"fmt"
)

// ErrFault wraps hardware-path failures (device unavailable, I/O error).
// A fault aborts the current record/playback cycle but never the process.
var ErrFault = errors.New("audio hardware fault")

// Driver is the capability set the mode controller needs from the audio
// hardware. Capture produces samples chunk-at-a-time at a fixed rate;
// playback consumes chunks in order at the configured playback rate and
// both paths share the same bit depth. Blocking waits are bounded to one
// chunk so the caller's loop stays responsive between calls.
type Driver interface {
	// StartCapture opens the microphone path.
	StartCapture(ctx context.Context) error

	// ReadChunk blocks until dst is filled with captured samples, returning
	// the number of samples read.
	ReadChunk(ctx context.Context, dst []int16) (int, error)

	// StopCapture closes the microphone path.
	StopCapture() error

	// StartPlayback opens the loudspeaker path.
	StartPlayback(ctx context.Context) error

	// WriteChunk blocks until chunk has been handed to the output device.
	WriteChunk(ctx context.Context, chunk []int16) error

	// StopPlayback closes the loudspeaker path.
	StopPlayback() error

	// SampleRate returns the fixed capture rate in Hz.
	SampleRate() int

	// PlaybackRate returns the fixed playback rate in Hz.
	PlaybackRate() int

	// Close releases the backend.
	Close() error
}

// Config contains the fixed stream parameters shared by all backends
type Config struct {
	SampleRate   int // capture rate, Hz
	PlaybackRate int // playback rate, Hz (2x capture when oversampling)
	ChunkSamples int // samples per transfer
}

// Validate checks the stream parameters
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}

	if c.PlaybackRate <= 0 {
		return fmt.Errorf("playback rate must be positive, got %d", c.PlaybackRate)
	}

	if c.ChunkSamples <= 0 {
		return fmt.Errorf("chunk samples must be positive, got %d", c.ChunkSamples)
	}

	return nil
}
