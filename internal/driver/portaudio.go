package driver

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudio drives the default host audio device through portaudio. Capture
// and playback use separate mono streams sharing the configured chunk size,
// so the device is opened for one direction at a time exactly as the
// controller alternates between them.
type PortAudio struct {
	config Config

	in          []int16
	out         []int16
	captureStr  *portaudio.Stream
	playbackStr *portaudio.Stream
}

// NewPortAudio initializes portaudio and returns a driver for the default
// host devices
func NewPortAudio(config Config) (*PortAudio, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", ErrFault, err)
	}

	return &PortAudio{
		config: config,
		in:     make([]int16, config.ChunkSamples),
		out:    make([]int16, config.ChunkSamples),
	}, nil
}

// StartCapture opens and starts the default input stream
func (p *PortAudio) StartCapture(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.captureStr != nil {
		return fmt.Errorf("capture already started")
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(p.config.SampleRate), len(p.in), p.in)
	if err != nil {
		return fmt.Errorf("%w: open capture stream: %v", ErrFault, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: start capture stream: %v", ErrFault, err)
	}

	p.captureStr = stream
	return nil
}

// ReadChunk blocks until one chunk of microphone samples is available
func (p *PortAudio) ReadChunk(ctx context.Context, dst []int16) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if p.captureStr == nil {
		return 0, fmt.Errorf("capture not started")
	}

	if err := p.captureStr.Read(); err != nil {
		return 0, fmt.Errorf("%w: read: %v", ErrFault, err)
	}

	return copy(dst, p.in), nil
}

// StopCapture stops and closes the input stream
func (p *PortAudio) StopCapture() error {
	if p.captureStr == nil {
		return nil
	}

	stream := p.captureStr
	p.captureStr = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: stop capture stream: %v", ErrFault, err)
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("%w: close capture stream: %v", ErrFault, err)
	}

	return nil
}

// StartPlayback opens and starts the default output stream at the playback rate
func (p *PortAudio) StartPlayback(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.playbackStr != nil {
		return fmt.Errorf("playback already started")
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(p.config.PlaybackRate), len(p.out), p.out)
	if err != nil {
		return fmt.Errorf("%w: open playback stream: %v", ErrFault, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: start playback stream: %v", ErrFault, err)
	}

	p.playbackStr = stream
	return nil
}

// WriteChunk blocks until chunk has been handed to the output device.
// A short final chunk is zero-padded to the fixed transfer size.
func (p *PortAudio) WriteChunk(ctx context.Context, chunk []int16) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.playbackStr == nil {
		return fmt.Errorf("playback not started")
	}

	if len(chunk) > len(p.out) {
		return fmt.Errorf("chunk of %d samples exceeds transfer size %d", len(chunk), len(p.out))
	}

	n := copy(p.out, chunk)
	for i := n; i < len(p.out); i++ {
		p.out[i] = 0
	}

	if err := p.playbackStr.Write(); err != nil {
		return fmt.Errorf("%w: write: %v", ErrFault, err)
	}

	return nil
}

// StopPlayback stops and closes the output stream, silencing the DAC
func (p *PortAudio) StopPlayback() error {
	if p.playbackStr == nil {
		return nil
	}

	stream := p.playbackStr
	p.playbackStr = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: stop playback stream: %v", ErrFault, err)
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("%w: close playback stream: %v", ErrFault, err)
	}

	return nil
}

// SampleRate returns the fixed capture rate in Hz
func (p *PortAudio) SampleRate() int {
	return p.config.SampleRate
}

// PlaybackRate returns the fixed playback rate in Hz
func (p *PortAudio) PlaybackRate() int {
	return p.config.PlaybackRate
}

// Close stops any open streams and terminates portaudio
func (p *PortAudio) Close() error {
	p.StopCapture()
	p.StopPlayback()

	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("%w: terminate: %v", ErrFault, err)
	}

	return nil
}
