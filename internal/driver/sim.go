package driver

import (
	"context"
	"fmt"
	"sync"
)

// Sim is a scriptable in-memory audio backend. Capture reads from a queued
// sample script, returning silence once the script is exhausted (a quiet
// room); playback records everything written so tests can assert on the
// exact output. Faults can be injected at a chosen sample position in either
// direction.
type Sim struct {
	config Config

	mu        sync.Mutex
	input     []int16
	pos       int
	played    []int16
	capturing bool
	playing   bool

	// Fault injection: sample positions at which the next transfer fails,
	// -1 disables.
	failCaptureAt  int
	failPlaybackAt int
}

// NewSim creates a simulated driver with no scripted input
func NewSim(config Config) (*Sim, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Sim{
		config:         config,
		failCaptureAt:  -1,
		failPlaybackAt: -1,
	}, nil
}

// QueueInput appends samples to the capture script
func (s *Sim) QueueInput(samples []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = append(s.input, samples...)
}

// FailCaptureAt makes the capture read covering sample position n fail with
// ErrFault. Pass -1 to disable.
func (s *Sim) FailCaptureAt(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCaptureAt = n
}

// FailPlaybackAt makes the playback write covering output sample position n
// fail with ErrFault. Pass -1 to disable.
func (s *Sim) FailPlaybackAt(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPlaybackAt = n
}

// Played returns a copy of every sample written to playback so far
func (s *Sim) Played() []int16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int16, len(s.played))
	copy(out, s.played)
	return out
}

// ResetScript clears the capture script, read position and playback record
func (s *Sim) ResetScript() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = nil
	s.pos = 0
	s.played = nil
}

// StartCapture opens the simulated microphone path
func (s *Sim) StartCapture(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capturing {
		return fmt.Errorf("capture already started")
	}
	s.capturing = true
	return nil
}

// ReadChunk fills dst from the script, then with silence once exhausted
func (s *Sim) ReadChunk(ctx context.Context, dst []int16) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capturing {
		return 0, fmt.Errorf("capture not started")
	}

	if s.failCaptureAt >= 0 && s.pos+len(dst) > s.failCaptureAt {
		return 0, fmt.Errorf("%w: simulated capture failure at sample %d", ErrFault, s.failCaptureAt)
	}

	n := copy(dst, s.input[min(s.pos, len(s.input)):])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	s.pos += len(dst)

	return len(dst), nil
}

// StopCapture closes the simulated microphone path
func (s *Sim) StopCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capturing = false
	return nil
}

// StartPlayback opens the simulated loudspeaker path
func (s *Sim) StartPlayback(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return fmt.Errorf("playback already started")
	}
	s.playing = true
	return nil
}

// WriteChunk records chunk as played output
func (s *Sim) WriteChunk(ctx context.Context, chunk []int16) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return fmt.Errorf("playback not started")
	}

	if s.failPlaybackAt >= 0 && len(s.played)+len(chunk) > s.failPlaybackAt {
		return fmt.Errorf("%w: simulated playback failure at sample %d", ErrFault, s.failPlaybackAt)
	}

	s.played = append(s.played, chunk...)
	return nil
}

// StopPlayback closes the simulated loudspeaker path
func (s *Sim) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	return nil
}

// SampleRate returns the fixed capture rate in Hz
func (s *Sim) SampleRate() int {
	return s.config.SampleRate
}

// PlaybackRate returns the fixed playback rate in Hz
func (s *Sim) PlaybackRate() int {
	return s.config.PlaybackRate
}

// Close releases the backend
func (s *Sim) Close() error {
	s.StopCapture()
	s.StopPlayback()
	return nil
}
