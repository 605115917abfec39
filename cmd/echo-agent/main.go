package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skypro1111/echo-agent/internal/audio"
	"github.com/skypro1111/echo-agent/internal/config"
	"github.com/skypro1111/echo-agent/internal/controller"
	"github.com/skypro1111/echo-agent/internal/driver"
	"github.com/skypro1111/echo-agent/internal/metrics"
	"github.com/skypro1111/echo-agent/internal/server"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "echo-agent"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary
	logger.Info("Configuration loaded",
		slog.String("backend", cfg.Driver.Backend),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("chunk_samples", cfg.Audio.ChunkSamples),
		slog.Float64("capture_seconds", cfg.Audio.CaptureSeconds),
		slog.Bool("oversample", cfg.Audio.Oversample),
		slog.Int("speech_threshold", cfg.Detector.SpeechThreshold),
		slog.Int("min_silence_ms", cfg.Detector.MinSilenceMS),
		slog.Int("volume", cfg.Playback.Volume),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Initialize the audio driver backend
	driverConfig := driver.Config{
		SampleRate:   cfg.Audio.SampleRate,
		PlaybackRate: cfg.Audio.PlaybackRate(),
		ChunkSamples: cfg.Audio.ChunkSamples,
	}

	var drv driver.Driver
	switch cfg.Driver.Backend {
	case "portaudio":
		drv, err = driver.NewPortAudio(driverConfig)
	case "sim":
		drv, err = driver.NewSim(driverConfig)
	default:
		logger.Error("Unknown driver backend", slog.String("backend", cfg.Driver.Backend))
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to initialize audio driver", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer drv.Close()
	logger.Info("Audio driver initialized", slog.String("backend", cfg.Driver.Backend))

	// Initialize the capture dumper (if enabled)
	var dumper *audio.Dumper
	if cfg.Dump.Enabled {
		dumper, err = audio.NewDumper(cfg.Dump.Directory, cfg.Dump.FileLimit, cfg.Audio.SampleRate)
		if err != nil {
			logger.Error("Failed to initialize capture dumper", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Capture dumper initialized",
			slog.String("directory", cfg.Dump.Directory),
			slog.Int("file_limit", cfg.Dump.FileLimit),
		)
	}

	// Build the controller configuration from the resolved settings
	frameSamples := cfg.Detector.FrameSamples(cfg.Audio.SampleRate)
	controllerConfig := controller.Config{
		Capacity:          cfg.Audio.CaptureCapacity(),
		ChunkSamples:      cfg.Audio.ChunkSamples,
		SampleRate:        cfg.Audio.SampleRate,
		Volume:            cfg.Playback.Volume,
		Oversample:        cfg.Audio.Oversample,
		SpeechThreshold:   cfg.Detector.SpeechThreshold,
		ZeroEstimate:      cfg.Detector.ZeroEstimate,
		MinSilenceSamples: cfg.Detector.MinSilenceSamples(cfg.Audio.SampleRate),

		TrimTrailingSilence: cfg.Detector.TrimTrailingSilence,

		PrerollEnabled: cfg.Detector.Preroll.Enabled,
		PrerollSamples: cfg.Detector.Preroll.WindowSamples(cfg.Audio.SampleRate),
		PrerollTrigger: cfg.Detector.Preroll.TriggerSamples(cfg.Audio.SampleRate),

		AttenuateEnabled:   cfg.Detector.Attenuate.Enabled,
		AttenuateThreshold: cfg.Detector.Attenuate.SpeechThreshold,
		AttenuatePerFrame:  cfg.Detector.Attenuate.SpeechSamplesPerFrame(frameSamples),
		FrameSamples:       frameSamples,
	}

	indicator := controller.NewLogIndicator(logger)

	ctrl, err := controller.NewController(controllerConfig, drv, indicator, dumper, logger, appMetrics)
	if err != nil {
		logger.Error("Failed to create controller", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Controller initialized",
		slog.Int("capacity_samples", controllerConfig.Capacity),
		slog.Int("min_silence_samples", controllerConfig.MinSilenceSamples),
		slog.Bool("preroll", controllerConfig.PrerollEnabled),
		slog.Bool("attenuate", controllerConfig.AttenuateEnabled),
	)

	// Initialize HTTP API server (if enabled)
	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, ctrl, appMetrics)
		logger.Info("HTTP API server initialized",
			slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
		)
	}

	// Start the controller loop
	controllerDone := make(chan error, 1)
	go func() {
		controllerDone <- ctrl.Run(ctx)
	}()

	// Start HTTP server (if enabled)
	if httpServer != nil {
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Setup signal handling: SIGINT/SIGTERM shut down, SIGUSR1 toggles the
	// controller like the physical switch.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)

	logger.Info("Service started successfully, waiting for signals...")

	// Wait for shutdown signal, forwarding toggles as they arrive
	controllerStopped := false
running:
	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGUSR1 {
				logger.Info("Received toggle signal")
				ctrl.Toggle()
				continue
			}
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			break running
		case err := <-controllerDone:
			if err != nil {
				logger.Error("Controller stopped with error", slog.String("error", err.Error()))
			}
			controllerStopped = true
			break running
		}
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	// Stop the controller loop
	cancel()
	if !controllerStopped {
		select {
		case <-controllerDone:
		case <-time.After(5 * time.Second):
			logger.Warn("Controller did not stop in time")
		}
	}

	// Log final statistics
	snapshot := ctrl.Snapshot()
	logger.Info("Final controller statistics",
		slog.Uint64("toggles", snapshot.Toggles),
		slog.Uint64("cycles_completed", snapshot.CyclesCompleted),
		slog.Uint64("cycles_aborted", snapshot.CyclesAborted),
		slog.Uint64("hardware_faults", snapshot.HardwareFaults),
		slog.Uint64("samples_captured", snapshot.SamplesCaptured),
		slog.Uint64("samples_played", snapshot.SamplesPlayed),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
