package controller

import "log/slog"

// Mode is the externally visible state of the controller
type Mode int

const (
	// ModeOnHold is the initial state: idle, waiting for a toggle.
	ModeOnHold Mode = iota
	// ModeListening is the active capture state.
	ModeListening
	// ModePlaying is the active playback state.
	ModePlaying
)

// String returns the lowercase mode name
func (m Mode) String() string {
	switch m {
	case ModeOnHold:
		return "on_hold"
	case ModeListening:
		return "listening"
	case ModePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Pattern is the status indicator signal the controller emits. How a pattern
// is rendered (LEDs, logs, a UI) is up to the Indicator implementation.
type Pattern int

const (
	// PatternBlinkSlow signals the on-hold state.
	PatternBlinkSlow Pattern = iota
	// PatternSolid signals active listening.
	PatternSolid
	// PatternRecording signals that speech was detected and is being recorded.
	PatternRecording
	// PatternPlayback signals active playback.
	PatternPlayback
	// PatternBlinkFast signals a hardware fault.
	PatternBlinkFast
)

// String returns the lowercase pattern name
func (p Pattern) String() string {
	switch p {
	case PatternBlinkSlow:
		return "blink_slow"
	case PatternSolid:
		return "solid"
	case PatternRecording:
		return "recording"
	case PatternPlayback:
		return "playback"
	case PatternBlinkFast:
		return "blink_fast"
	default:
		return "unknown"
	}
}

// Indicator receives status pattern changes from the controller
type Indicator interface {
	Set(pattern Pattern)
}

// LogIndicator renders status patterns as structured log lines, the default
// for hosts without status hardware
type LogIndicator struct {
	logger *slog.Logger
}

// NewLogIndicator creates an indicator logging at debug level
func NewLogIndicator(logger *slog.Logger) *LogIndicator {
	return &LogIndicator{logger: logger}
}

// Set logs the new status pattern
func (l *LogIndicator) Set(pattern Pattern) {
	l.logger.Debug("Status indicator changed", slog.String("pattern", pattern.String()))
}

// nopIndicator is used when no indicator is configured
type nopIndicator struct{}

func (nopIndicator) Set(Pattern) {}
