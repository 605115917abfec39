package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete echo agent configuration
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Detector DetectorConfig `yaml:"detector"`
	Playback PlaybackConfig `yaml:"playback"`
	Driver   DriverConfig   `yaml:"driver"`
	Dump     DumpConfig     `yaml:"dump"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AudioConfig contains capture and sample format parameters
type AudioConfig struct {
	SampleRate     int     `yaml:"sample_rate"`     // Hz
	BitDepth       int     `yaml:"bit_depth"`       // bits per sample
	ChunkSamples   int     `yaml:"chunk_samples"`   // samples transferred per driver call
	CaptureSeconds float64 `yaml:"capture_seconds"` // speech buffer length in seconds
	Oversample     bool    `yaml:"oversample"`      // interpolated 2x-rate playback
}

// DetectorConfig contains speech and silence detection parameters
type DetectorConfig struct {
	SpeechThreshold     int             `yaml:"speech_threshold"`      // absolute delta from the zero estimate
	ZeroEstimate        int             `yaml:"zero_estimate"`         // initial sample value representing silence
	MinSilenceMS        int             `yaml:"min_silence_ms"`        // sustained quiet needed to stop a recording
	FrameMS             int             `yaml:"frame_ms"`              // attenuation frame length
	TrimTrailingSilence bool            `yaml:"trim_trailing_silence"` // exclude the stopping silence run from playback
	Attenuate           AttenuateConfig `yaml:"attenuate"`
	Preroll             PrerollConfig   `yaml:"preroll"`
}

// AttenuateConfig controls the post-capture silence attenuation pass
type AttenuateConfig struct {
	Enabled         bool `yaml:"enabled"`
	SpeechThreshold int  `yaml:"speech_threshold"` // higher than the detector threshold
	SpeechPercent   int  `yaml:"speech_percent"`   // speech samples per frame that keep the frame
}

// PrerollConfig controls the circular speech-onset buffer that precedes recording
type PrerollConfig struct {
	Enabled        bool `yaml:"enabled"`
	WindowMS       int  `yaml:"window_ms"`       // circular buffer length
	TriggerPercent int  `yaml:"trigger_percent"` // window fill of speech samples that starts recording
}

// PlaybackConfig contains loudspeaker output parameters
type PlaybackConfig struct {
	Volume int `yaml:"volume"` // 0 (off) to 127 (maximum)
}

// DriverConfig selects the audio hardware backend
type DriverConfig struct {
	Backend string `yaml:"backend"` // "portaudio" or "sim"
}

// DumpConfig controls diagnostic WAV dumps of completed captures
type DumpConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
	FileLimit int    `yaml:"file_limit"` // files are reused round-robin
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector config: %w", err)
	}

	if err := c.Playback.Validate(); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}

	if err := c.Driver.Validate(); err != nil {
		return fmt.Errorf("driver config: %w", err)
	}

	if err := c.Dump.Validate(); err != nil {
		return fmt.Errorf("dump config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	// The preroll buffer is unrolled over the start of the speech buffer,
	// so the speech buffer must be strictly larger.
	if c.Detector.Preroll.Enabled {
		if c.Detector.Preroll.WindowSamples(c.Audio.SampleRate) >= c.Audio.CaptureCapacity() {
			return fmt.Errorf("preroll window (%d samples) must be smaller than the capture buffer (%d samples)",
				c.Detector.Preroll.WindowSamples(c.Audio.SampleRate), c.Audio.CaptureCapacity())
		}
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000 Hz, got %d", a.SampleRate)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16 for PCM host audio, got %d", a.BitDepth)
	}

	if a.ChunkSamples < 16 || a.ChunkSamples > 4096 {
		return fmt.Errorf("chunk_samples must be between 16 and 4096, got %d", a.ChunkSamples)
	}

	if a.CaptureSeconds <= 0 {
		return fmt.Errorf("capture_seconds must be positive, got %f", a.CaptureSeconds)
	}

	return nil
}

// Validate validates detector configuration
func (d *DetectorConfig) Validate() error {
	if d.SpeechThreshold < 1 {
		return fmt.Errorf("speech_threshold must be at least 1, got %d", d.SpeechThreshold)
	}

	if d.MinSilenceMS < 1 {
		return fmt.Errorf("min_silence_ms must be at least 1, got %d", d.MinSilenceMS)
	}

	if d.FrameMS < 1 {
		return fmt.Errorf("frame_ms must be at least 1, got %d", d.FrameMS)
	}

	if d.Attenuate.Enabled {
		if d.Attenuate.SpeechThreshold < d.SpeechThreshold {
			return fmt.Errorf("attenuate speech_threshold (%d) must not be below the detector speech_threshold (%d)",
				d.Attenuate.SpeechThreshold, d.SpeechThreshold)
		}

		if d.Attenuate.SpeechPercent < 1 || d.Attenuate.SpeechPercent > 100 {
			return fmt.Errorf("attenuate speech_percent must be between 1 and 100, got %d", d.Attenuate.SpeechPercent)
		}
	}

	if d.Preroll.Enabled {
		if d.Preroll.WindowMS < 1 {
			return fmt.Errorf("preroll window_ms must be at least 1, got %d", d.Preroll.WindowMS)
		}

		if d.Preroll.TriggerPercent < 1 || d.Preroll.TriggerPercent > 100 {
			return fmt.Errorf("preroll trigger_percent must be between 1 and 100, got %d", d.Preroll.TriggerPercent)
		}
	}

	return nil
}

// Validate validates playback configuration
func (p *PlaybackConfig) Validate() error {
	if p.Volume < 0 || p.Volume > 127 {
		return fmt.Errorf("volume must be between 0 and 127, got %d", p.Volume)
	}

	return nil
}

// Validate validates driver configuration
func (d *DriverConfig) Validate() error {
	validBackends := map[string]bool{"portaudio": true, "sim": true}
	if !validBackends[d.Backend] {
		return fmt.Errorf("backend must be 'portaudio' or 'sim', got '%s'", d.Backend)
	}

	return nil
}

// Validate validates dump configuration
func (d *DumpConfig) Validate() error {
	if d.Enabled {
		if d.Directory == "" {
			return fmt.Errorf("directory cannot be empty when dumping is enabled")
		}

		if d.FileLimit < 1 {
			return fmt.Errorf("file_limit must be at least 1, got %d", d.FileLimit)
		}
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	// Output accepts stdout, stderr or a file path; nothing to reject here.
	return nil
}

// CaptureCapacity returns the speech buffer size in samples
func (a *AudioConfig) CaptureCapacity() int {
	return int(a.CaptureSeconds * float64(a.SampleRate))
}

// PlaybackRate returns the DAC rate in Hz, doubled when oversampling
func (a *AudioConfig) PlaybackRate() int {
	if a.Oversample {
		return a.SampleRate * 2
	}
	return a.SampleRate
}

// ChunkDuration returns the wall-clock time covered by one transfer chunk
func (a *AudioConfig) ChunkDuration() time.Duration {
	return time.Duration(a.ChunkSamples) * time.Second / time.Duration(a.SampleRate)
}

// MinSilenceSamples returns the end-of-speech debounce run in samples
func (d *DetectorConfig) MinSilenceSamples(sampleRate int) int {
	return d.MinSilenceMS * sampleRate / 1000
}

// FrameSamples returns the attenuation frame length in samples
func (d *DetectorConfig) FrameSamples(sampleRate int) int {
	return d.FrameMS * sampleRate / 1000
}

// WindowSamples returns the preroll circular buffer size in samples
func (p *PrerollConfig) WindowSamples(sampleRate int) int {
	return p.WindowMS * sampleRate / 1000
}

// TriggerSamples returns the absolute speech sample count that starts recording
func (p *PrerollConfig) TriggerSamples(sampleRate int) int {
	return p.WindowSamples(sampleRate) * p.TriggerPercent / 100
}

// SpeechSamplesPerFrame returns the per-frame speech sample count below which
// an attenuation frame is considered silent
func (a *AttenuateConfig) SpeechSamplesPerFrame(frameSamples int) int {
	return frameSamples * a.SpeechPercent / 100
}
