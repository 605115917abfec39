package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skypro1111/echo-agent/internal/audio"
	"github.com/skypro1111/echo-agent/internal/detect"
	"github.com/skypro1111/echo-agent/internal/driver"
	"github.com/skypro1111/echo-agent/internal/metrics"
)

// Capture stop reasons, also used as metric label values.
const (
	stopSilence    = "silence"
	stopBufferFull = "buffer_full"
)

// errToggled aborts the current cycle when a toggle arrives mid-capture or
// mid-playback
var errToggled = errors.New("toggled while busy")

// Config contains the resolved controller parameters. All sample counts are
// in capture-rate samples.
type Config struct {
	Capacity     int // speech buffer capacity in samples
	ChunkSamples int // samples per hardware transfer
	SampleRate   int // capture rate in Hz
	Volume       int // playback volume, 0 to 127
	Oversample   bool

	SpeechThreshold   int // absolute delta from the zero estimate counting as speech
	ZeroEstimate      int // initial estimate of the silent sample value
	MinSilenceSamples int // consecutive quiet samples that end a recording

	TrimTrailingSilence bool

	// Preroll speech onset detection. When disabled recording starts with
	// the first captured sample.
	PrerollEnabled bool
	PrerollSamples int // circular preroll window size
	PrerollTrigger int // speech sample count that starts recording

	// Silence attenuation before playback.
	AttenuateEnabled   bool
	AttenuateThreshold int
	AttenuatePerFrame  int // speech samples that disqualify a frame
	FrameSamples       int
}

// Validate checks the controller configuration
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1 sample, got %d", c.Capacity)
	}

	if c.ChunkSamples < 1 {
		return fmt.Errorf("chunk size must be at least 1 sample, got %d", c.ChunkSamples)
	}

	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}

	if c.Volume < 0 || c.Volume > 127 {
		return fmt.Errorf("volume must be 0-127, got %d", c.Volume)
	}

	if c.SpeechThreshold < 1 {
		return fmt.Errorf("speech threshold must be at least 1, got %d", c.SpeechThreshold)
	}

	if c.MinSilenceSamples < 1 {
		return fmt.Errorf("minimum silence run must be at least 1 sample, got %d", c.MinSilenceSamples)
	}

	if c.PrerollEnabled {
		if c.PrerollSamples < 1 {
			return fmt.Errorf("preroll window must be at least 1 sample, got %d", c.PrerollSamples)
		}

		if c.PrerollSamples >= c.Capacity {
			return fmt.Errorf("preroll window of %d samples must be smaller than capacity %d", c.PrerollSamples, c.Capacity)
		}

		if c.PrerollTrigger < 1 {
			return fmt.Errorf("preroll trigger must be at least 1 sample, got %d", c.PrerollTrigger)
		}
	}

	if c.AttenuateEnabled {
		if c.FrameSamples < 1 {
			return fmt.Errorf("frame size must be at least 1 sample, got %d", c.FrameSamples)
		}

		if c.AttenuateThreshold < 1 {
			return fmt.Errorf("attenuation threshold must be at least 1, got %d", c.AttenuateThreshold)
		}

		if c.AttenuatePerFrame < 1 {
			return fmt.Errorf("attenuation speech samples per frame must be at least 1, got %d", c.AttenuatePerFrame)
		}
	}

	return nil
}

// Controller runs the record/playback cycle of the echo agent. It owns the
// speech buffer, the detectors and the audio driver; everything audible
// happens on the goroutine running Run. Toggle is safe from any goroutine.
type Controller struct {
	config    Config
	drv       driver.Driver
	indicator Indicator
	dumper    *audio.Dumper
	logger    *slog.Logger
	metrics   *metrics.Metrics

	buffer     *audio.SampleBuffer
	silence    *detect.SilenceDetector
	preroll    *audio.PrerollBuffer
	onset      *detect.StartDetector
	attenuator *audio.Attenuator

	toggle chan struct{}

	mu    sync.RWMutex
	mode  Mode
	stats stats
}

// stats holds the counters reported through Snapshot
type stats struct {
	toggles            uint64
	cyclesCompleted    uint64
	cyclesAborted      uint64
	hardwareFaults     uint64
	lastCycleID        string
	lastStopReason     string
	lastCaptureSamples int
	samplesCaptured    uint64
	samplesPlayed      uint64
}

// NewController creates a controller over the given driver. indicator, dumper
// and m may be nil.
func NewController(config Config, drv driver.Driver, indicator Indicator, dumper *audio.Dumper, logger *slog.Logger, m *metrics.Metrics) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller config: %w", err)
	}

	if drv == nil {
		return nil, fmt.Errorf("driver is required")
	}

	if indicator == nil {
		indicator = nopIndicator{}
	}

	buffer, err := audio.NewSampleBuffer(config.Capacity)
	if err != nil {
		return nil, err
	}

	silence, err := detect.NewSilenceDetector(config.SpeechThreshold, config.ZeroEstimate, config.MinSilenceSamples)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		config:    config,
		drv:       drv,
		indicator: indicator,
		dumper:    dumper,
		logger:    logger,
		metrics:   m,
		buffer:    buffer,
		silence:   silence,
		toggle:    make(chan struct{}, 1),
		mode:      ModeOnHold,
	}

	if config.PrerollEnabled {
		c.preroll, err = audio.NewPrerollBuffer(config.PrerollSamples)
		if err != nil {
			return nil, err
		}

		c.onset, err = detect.NewStartDetector(config.SpeechThreshold, config.ZeroEstimate, config.PrerollTrigger)
		if err != nil {
			return nil, err
		}
	}

	if config.AttenuateEnabled {
		c.attenuator, err = audio.NewAttenuator(audio.AttenuatorConfig{
			FrameSamples:    config.FrameSamples,
			SpeechThreshold: config.AttenuateThreshold,
			SpeechPerFrame:  config.AttenuatePerFrame,
			ZeroEstimate:    config.ZeroEstimate,
		})
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Toggle delivers one toggle event to the controller. It never blocks;
// events arriving while one is already pending are coalesced, which debounces
// a bouncy switch or repeated API calls.
func (c *Controller) Toggle() {
	c.mu.Lock()
	c.stats.toggles++
	c.mu.Unlock()

	c.metrics.RecordToggle()

	select {
	case c.toggle <- struct{}{}:
		c.logger.Debug("Toggle event queued")
	default:
		c.logger.Debug("Toggle event coalesced with pending event")
	}
}

// Mode returns the current controller mode
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Snapshot is a point-in-time view of the controller state for the HTTP API
type Snapshot struct {
	Mode               string `json:"mode"`
	Toggles            uint64 `json:"toggles"`
	CyclesCompleted    uint64 `json:"cycles_completed"`
	CyclesAborted      uint64 `json:"cycles_aborted"`
	HardwareFaults     uint64 `json:"hardware_faults"`
	LastCycleID        string `json:"last_cycle_id,omitempty"`
	LastStopReason     string `json:"last_stop_reason,omitempty"`
	LastCaptureSamples int    `json:"last_capture_samples"`
	SamplesCaptured    uint64 `json:"samples_captured"`
	SamplesPlayed      uint64 `json:"samples_played"`
	ZeroEstimate       int    `json:"zero_estimate"`
}

// Snapshot returns the current controller state
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Mode:               c.mode.String(),
		Toggles:            c.stats.toggles,
		CyclesCompleted:    c.stats.cyclesCompleted,
		CyclesAborted:      c.stats.cyclesAborted,
		HardwareFaults:     c.stats.hardwareFaults,
		LastCycleID:        c.stats.lastCycleID,
		LastStopReason:     c.stats.lastStopReason,
		LastCaptureSamples: c.stats.lastCaptureSamples,
		SamplesCaptured:    c.stats.samplesCaptured,
		SamplesPlayed:      c.stats.samplesPlayed,
		ZeroEstimate:       c.silence.ZeroEstimate(),
	}
}

// Run executes the controller loop until ctx is cancelled. Any abort, whether
// toggle or hardware fault, returns the controller to on hold; only
// cancellation ends the loop.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("Controller started",
		slog.Int("capacity_samples", c.config.Capacity),
		slog.Int("chunk_samples", c.config.ChunkSamples),
		slog.Int("sample_rate", c.config.SampleRate),
		slog.Bool("preroll", c.config.PrerollEnabled),
		slog.Bool("attenuate", c.config.AttenuateEnabled))

	for {
		c.setMode(ModeOnHold)
		c.indicator.Set(PatternBlinkSlow)
		c.logger.Info("On hold, waiting for toggle")

		select {
		case <-ctx.Done():
			c.logger.Info("Controller stopped")
			return nil
		case <-c.toggle:
		}

		err := c.runCycle(ctx)
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, errToggled):
			c.logger.Info("Cycle aborted by toggle")
			c.recordAborted(false)
			c.metrics.RecordCycleAborted()
		case errors.Is(err, driver.ErrFault):
			c.logger.Error("Hardware fault, returning on hold", slog.String("error", err.Error()))
			c.indicator.Set(PatternBlinkFast)
			c.recordAborted(true)
			c.metrics.RecordHardwareFault()
			c.metrics.RecordCycleAborted()
		case ctx.Err() != nil:
			c.logger.Info("Controller stopped")
			return nil
		default:
			c.logger.Error("Cycle failed", slog.String("error", err.Error()))
			c.recordAborted(false)
			c.metrics.RecordCycleAborted()
		}
	}
}

// runCycle performs one listening phase and, if capture produced samples, the
// playback phase that follows it
func (c *Controller) runCycle(ctx context.Context) error {
	cycleID := uuid.New().String()

	c.mu.Lock()
	c.stats.lastCycleID = cycleID
	c.mu.Unlock()

	captured, stopReason, captureDuration, err := c.capture(ctx, cycleID)
	if err != nil {
		return err
	}

	playbackSamples := captured
	if c.config.TrimTrailingSilence && stopReason == stopSilence {
		playbackSamples = captured - c.silence.Run()
	}

	c.metrics.RecordCaptureStop(stopReason)
	c.metrics.RecordSamplesCaptured(captured)

	c.mu.Lock()
	c.stats.lastStopReason = stopReason
	c.stats.lastCaptureSamples = captured
	c.stats.samplesCaptured += uint64(captured)
	c.mu.Unlock()

	c.logger.Info("Capture complete",
		slog.String("cycle_id", cycleID),
		slog.String("stop_reason", stopReason),
		slog.Int("samples", captured),
		slog.Int("playback_samples", playbackSamples),
		slog.Duration("duration", captureDuration))

	// Attenuation mutates the buffer, so it runs before the switch to
	// playback.
	samples := c.buffer.Samples()[:playbackSamples]
	if c.attenuator != nil && len(samples) > 0 {
		flattened := c.attenuator.Apply(samples)
		zero := c.attenuator.ZeroEstimate()
		c.silence.SetZeroEstimate(zero)
		if c.onset != nil {
			c.onset.SetZeroEstimate(zero)
		}

		c.logger.Debug("Silence attenuated",
			slog.String("cycle_id", cycleID),
			slog.Int("frames_flattened", flattened),
			slog.Int("zero_estimate", zero))
	}

	playbackDuration, err := c.play(ctx, cycleID, samples)
	if err != nil {
		return err
	}

	if c.dumper != nil && len(samples) > 0 {
		path, err := c.dumper.Dump(samples)
		if err != nil {
			c.logger.Warn("Capture dump failed",
				slog.String("cycle_id", cycleID),
				slog.String("error", err.Error()))
		} else {
			c.logger.Debug("Capture dumped",
				slog.String("cycle_id", cycleID),
				slog.String("path", path))
		}
	}

	c.mu.Lock()
	c.stats.cyclesCompleted++
	c.mu.Unlock()

	c.metrics.RecordCycleCompleted(captureDuration.Seconds(), playbackDuration.Seconds(), captured)

	c.logger.Info("Cycle complete",
		slog.String("cycle_id", cycleID),
		slog.Duration("capture_duration", captureDuration),
		slog.Duration("playback_duration", playbackDuration))

	return nil
}

// capture records into the speech buffer until sustained silence, a full
// buffer, a toggle, a fault or cancellation. It returns the number of
// captured samples and the stop reason.
func (c *Controller) capture(ctx context.Context, cycleID string) (int, string, time.Duration, error) {
	c.setMode(ModeListening)
	c.indicator.Set(PatternSolid)

	c.buffer.Reset()
	c.silence.Reset()

	recording := c.onset == nil
	if !recording {
		c.preroll.Reset()
		c.onset.Reset()
	}

	if err := c.drv.StartCapture(ctx); err != nil {
		return 0, "", 0, err
	}
	start := time.Now()

	c.logger.Info("Listening",
		slog.String("cycle_id", cycleID),
		slog.Bool("waiting_for_speech", !recording))

	chunk := make([]int16, c.config.ChunkSamples)
	stopReason := ""

capture:
	for {
		select {
		case <-ctx.Done():
			c.drv.StopCapture()
			return 0, "", 0, ctx.Err()
		case <-c.toggle:
			c.drv.StopCapture()
			return 0, "", 0, errToggled
		default:
		}

		n, err := c.drv.ReadChunk(ctx, chunk)
		if err != nil {
			c.drv.StopCapture()
			return 0, "", 0, err
		}

		for _, sample := range chunk[:n] {
			if !recording {
				c.preroll.Write(sample)
				if c.onset.Observe(sample) {
					if _, err := c.preroll.UnrollInto(c.buffer); err != nil {
						c.drv.StopCapture()
						return 0, "", 0, err
					}
					c.silence.Reset()
					recording = true
					c.indicator.Set(PatternRecording)

					c.logger.Info("Speech detected, recording",
						slog.String("cycle_id", cycleID),
						slog.Int("preroll_samples", c.buffer.Len()))
				}
				continue
			}

			if err := c.buffer.Append(sample); err != nil {
				stopReason = stopBufferFull
				break capture
			}

			if c.buffer.Full() {
				stopReason = stopBufferFull
				break capture
			}

			if c.silence.Observe(sample) {
				stopReason = stopSilence
				break capture
			}
		}
	}

	if err := c.drv.StopCapture(); err != nil {
		return 0, "", 0, err
	}

	return c.buffer.Len(), stopReason, time.Since(start), nil
}

// play renders samples through the output device at the configured volume,
// oversampling if enabled. A toggle or fault mid-playback aborts the cycle.
func (c *Controller) play(ctx context.Context, cycleID string, samples []int16) (time.Duration, error) {
	c.setMode(ModePlaying)
	c.indicator.Set(PatternPlayback)

	if len(samples) == 0 {
		c.logger.Info("Nothing to play",
			slog.String("cycle_id", cycleID))
		return 0, nil
	}

	out := audio.ApplyVolume(samples, c.config.Volume)
	if c.config.Oversample {
		out = audio.Oversample2x(out)
	}

	if err := c.drv.StartPlayback(ctx); err != nil {
		return 0, err
	}
	start := time.Now()

	c.logger.Info("Playing",
		slog.String("cycle_id", cycleID),
		slog.Int("samples", len(out)),
		slog.Int("playback_rate", c.drv.PlaybackRate()))

	played := 0
	for played < len(out) {
		select {
		case <-ctx.Done():
			c.drv.StopPlayback()
			c.recordPlayed(played)
			return 0, ctx.Err()
		case <-c.toggle:
			c.drv.StopPlayback()
			c.recordPlayed(played)
			return 0, errToggled
		default:
		}

		end := played + c.config.ChunkSamples
		if end > len(out) {
			end = len(out)
		}

		if err := c.drv.WriteChunk(ctx, out[played:end]); err != nil {
			c.drv.StopPlayback()
			c.recordPlayed(played)
			return 0, err
		}
		played = end
	}

	if err := c.drv.StopPlayback(); err != nil {
		c.recordPlayed(played)
		return 0, err
	}

	c.recordPlayed(played)

	return time.Since(start), nil
}

// recordPlayed accounts for samples that reached the output device, including
// the chunks written before an aborted playback stopped
func (c *Controller) recordPlayed(n int) {
	if n == 0 {
		return
	}

	c.metrics.RecordSamplesPlayed(n)

	c.mu.Lock()
	c.stats.samplesPlayed += uint64(n)
	c.mu.Unlock()
}

func (c *Controller) setMode(mode Mode) {
	c.mu.Lock()
	previous := c.mode
	c.mode = mode
	c.mu.Unlock()

	if previous != mode {
		c.logger.Debug("Mode changed",
			slog.String("from", previous.String()),
			slog.String("to", mode.String()))
	}
}

func (c *Controller) recordAborted(fault bool) {
	c.mu.Lock()
	c.stats.cyclesAborted++
	if fault {
		c.stats.hardwareFaults++
	}
	c.mu.Unlock()
}
