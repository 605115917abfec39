package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig returns a configuration that passes validation
func validConfig() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate:     8000,
			BitDepth:       16,
			ChunkSamples:   256,
			CaptureSeconds: 7.0,
			Oversample:     true,
		},
		Detector: DetectorConfig{
			SpeechThreshold: 1600,
			ZeroEstimate:    0,
			MinSilenceMS:    300,
			FrameMS:         100,
			Attenuate: AttenuateConfig{
				Enabled:         true,
				SpeechThreshold: 2000,
				SpeechPercent:   2,
			},
			Preroll: PrerollConfig{
				Enabled:        true,
				WindowMS:       500,
				TriggerPercent: 10,
			},
		},
		Playback: PlaybackConfig{
			Volume: 127,
		},
		Driver: DriverConfig{
			Backend: "sim",
		},
		Dump: DumpConfig{
			Enabled:   true,
			Directory: "captures",
			FileLimit: 4,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Address: "127.0.0.1",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "sample rate too low",
			mutate:      func(c *Config) { c.Audio.SampleRate = 4000 },
			expectError: true,
		},
		{
			name:        "sample rate too high",
			mutate:      func(c *Config) { c.Audio.SampleRate = 96000 },
			expectError: true,
		},
		{
			name:        "unsupported bit depth",
			mutate:      func(c *Config) { c.Audio.BitDepth = 8 },
			expectError: true,
		},
		{
			name:        "chunk too small",
			mutate:      func(c *Config) { c.Audio.ChunkSamples = 8 },
			expectError: true,
		},
		{
			name:        "chunk too large",
			mutate:      func(c *Config) { c.Audio.ChunkSamples = 8192 },
			expectError: true,
		},
		{
			name:        "zero capture length",
			mutate:      func(c *Config) { c.Audio.CaptureSeconds = 0 },
			expectError: true,
		},
		{
			name:        "zero speech threshold",
			mutate:      func(c *Config) { c.Detector.SpeechThreshold = 0 },
			expectError: true,
		},
		{
			name:        "zero silence window",
			mutate:      func(c *Config) { c.Detector.MinSilenceMS = 0 },
			expectError: true,
		},
		{
			name:        "attenuate threshold below detector threshold",
			mutate:      func(c *Config) { c.Detector.Attenuate.SpeechThreshold = 100 },
			expectError: true,
		},
		{
			name:        "attenuate percent out of range",
			mutate:      func(c *Config) { c.Detector.Attenuate.SpeechPercent = 150 },
			expectError: true,
		},
		{
			name:        "preroll trigger percent out of range",
			mutate:      func(c *Config) { c.Detector.Preroll.TriggerPercent = 0 },
			expectError: true,
		},
		{
			name:        "preroll window larger than capture buffer",
			mutate:      func(c *Config) { c.Detector.Preroll.WindowMS = 8000 },
			expectError: true,
		},
		{
			name:        "volume out of range",
			mutate:      func(c *Config) { c.Playback.Volume = 200 },
			expectError: true,
		},
		{
			name:        "unknown driver backend",
			mutate:      func(c *Config) { c.Driver.Backend = "alsa" },
			expectError: true,
		},
		{
			name:        "dump enabled without directory",
			mutate:      func(c *Config) { c.Dump.Directory = "" },
			expectError: true,
		},
		{
			name:        "http port out of range",
			mutate:      func(c *Config) { c.HTTP.Port = 70000 },
			expectError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
		},
		{
			name: "disabled sections skip their checks",
			mutate: func(c *Config) {
				c.Detector.Attenuate = AttenuateConfig{}
				c.Detector.Preroll = PrerollConfig{}
				c.Dump = DumpConfig{}
				c.HTTP = HTTPConfig{}
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.expectError && err == nil {
				t.Errorf("Expected validation error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `
audio:
  sample_rate: 8000
  bit_depth: 16
  chunk_samples: 256
  capture_seconds: 7.0
  oversample: true
detector:
  speech_threshold: 1600
  zero_estimate: 0
  min_silence_ms: 300
  frame_ms: 100
  attenuate:
    enabled: true
    speech_threshold: 2000
    speech_percent: 2
  preroll:
    enabled: true
    window_ms: 500
    trigger_percent: 10
playback:
  volume: 100
driver:
  backend: sim
dump:
  enabled: false
http:
  enabled: true
  address: 127.0.0.1
  port: 9090
logging:
  level: debug
  format: json
  output: stderr
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", cfg.Audio.SampleRate)
	}

	if cfg.Playback.Volume != 100 {
		t.Errorf("Expected volume 100, got %d", cfg.Playback.Volume)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("Expected HTTP port 9090, got %d", cfg.HTTP.Port)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("audio: ["), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := validConfig()

	if got := cfg.Audio.CaptureCapacity(); got != 56000 {
		t.Errorf("Expected capture capacity 56000 samples, got %d", got)
	}

	if got := cfg.Audio.PlaybackRate(); got != 16000 {
		t.Errorf("Expected playback rate 16000 Hz with oversampling, got %d", got)
	}

	cfg.Audio.Oversample = false
	if got := cfg.Audio.PlaybackRate(); got != 8000 {
		t.Errorf("Expected playback rate 8000 Hz without oversampling, got %d", got)
	}

	if got := cfg.Audio.ChunkDuration(); got != 32*time.Millisecond {
		t.Errorf("Expected chunk duration 32ms, got %v", got)
	}

	if got := cfg.Detector.MinSilenceSamples(8000); got != 2400 {
		t.Errorf("Expected 2400 silence samples, got %d", got)
	}

	if got := cfg.Detector.FrameSamples(8000); got != 800 {
		t.Errorf("Expected 800 frame samples, got %d", got)
	}

	if got := cfg.Detector.Preroll.WindowSamples(8000); got != 4000 {
		t.Errorf("Expected 4000 preroll window samples, got %d", got)
	}

	if got := cfg.Detector.Preroll.TriggerSamples(8000); got != 400 {
		t.Errorf("Expected 400 preroll trigger samples, got %d", got)
	}

	if got := cfg.Detector.Attenuate.SpeechSamplesPerFrame(800); got != 16 {
		t.Errorf("Expected 16 speech samples per frame, got %d", got)
	}
}
