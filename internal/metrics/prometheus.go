package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the echo agent
type Metrics struct {
	// Mode controller metrics
	ToggleEvents    prometheus.Counter
	CyclesCompleted prometheus.Counter
	CyclesAborted   prometheus.Counter
	HardwareFaults  prometheus.Counter
	CaptureStops    *prometheus.CounterVec

	// Audio path metrics
	SamplesCaptured  prometheus.Counter
	SamplesPlayed    prometheus.Counter
	CaptureDuration  prometheus.Histogram
	PlaybackDuration prometheus.Histogram
	CaptureSamples   prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Mode controller metrics
		ToggleEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_toggle_events_total",
			Help: "Total number of toggle events received",
		}),
		CyclesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_cycles_completed_total",
			Help: "Total number of record/playback cycles completed",
		}),
		CyclesAborted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_cycles_aborted_total",
			Help: "Total number of cycles aborted by toggle or fault",
		}),
		HardwareFaults: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_hardware_faults_total",
			Help: "Total number of audio hardware faults",
		}),
		CaptureStops: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_capture_stops_total",
			Help: "Total number of capture stops by reason",
		}, []string{"reason"}),

		// Audio path metrics
		SamplesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_samples_captured_total",
			Help: "Total number of samples recorded to the speech buffer",
		}),
		SamplesPlayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_samples_played_total",
			Help: "Total number of samples written to the output device",
		}),
		CaptureDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "echo_capture_duration_seconds",
			Help:    "Wall-clock duration of capture phases",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.7 minutes
		}),
		PlaybackDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "echo_playback_duration_seconds",
			Help:    "Wall-clock duration of playback phases",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		CaptureSamples: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "echo_capture_samples",
			Help:    "Samples recorded per completed capture",
			Buckets: prometheus.ExponentialBuckets(500, 2, 8), // 500 to ~64k samples
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "echo_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordToggle increments the toggle events counter. All Record helpers are
// nil-receiver safe so components can run unmetered in tests.
func (m *Metrics) RecordToggle() {
	if m == nil {
		return
	}
	m.ToggleEvents.Inc()
}

// RecordCycleCompleted records a completed cycle with its phase durations
func (m *Metrics) RecordCycleCompleted(captureSeconds, playbackSeconds float64, samples int) {
	if m == nil {
		return
	}
	m.CyclesCompleted.Inc()
	m.CaptureDuration.Observe(captureSeconds)
	m.PlaybackDuration.Observe(playbackSeconds)
	m.CaptureSamples.Observe(float64(samples))
}

// RecordCycleAborted increments the aborted cycles counter
func (m *Metrics) RecordCycleAborted() {
	if m == nil {
		return
	}
	m.CyclesAborted.Inc()
}

// RecordHardwareFault increments the hardware faults counter
func (m *Metrics) RecordHardwareFault() {
	if m == nil {
		return
	}
	m.HardwareFaults.Inc()
}

// RecordCaptureStop records why a capture ended ("silence" or "buffer_full")
func (m *Metrics) RecordCaptureStop(reason string) {
	if m == nil {
		return
	}
	m.CaptureStops.WithLabelValues(reason).Inc()
}

// RecordSamplesCaptured adds to the captured samples counter
func (m *Metrics) RecordSamplesCaptured(n int) {
	if m == nil {
		return
	}
	m.SamplesCaptured.Add(float64(n))
}

// RecordSamplesPlayed adds to the played samples counter
func (m *Metrics) RecordSamplesPlayed(n int) {
	if m == nil {
		return
	}
	m.SamplesPlayed.Add(float64(n))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	if m == nil {
		return
	}
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
