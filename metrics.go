package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwsl/sstv-modulator/sstv"
)

// EncodeMetrics implements sstv.EncodeObserver, recording counters and
// a duration histogram for each encoding run. Every collector is
// created with promauto so construction and registration happen in
// one step.
type EncodeMetrics struct {
	runsTotal         *prometheus.CounterVec
	tonesEmittedTotal *prometheus.CounterVec
	samplesWritten    *prometheus.CounterVec
	encodeDuration    *prometheus.HistogramVec

	activeMode  string
	startedAt   time.Time
	toneCount   float64
	sampleCount float64
}

// NewEncodeMetrics creates and registers the exporter's collectors.
func NewEncodeMetrics() *EncodeMetrics {
	return &EncodeMetrics{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sstv_encode_runs_total",
				Help: "Total number of encoding runs started, by mode.",
			},
			[]string{"mode"},
		),
		tonesEmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sstv_tones_emitted_total",
				Help: "Total number of tones emitted, by mode.",
			},
			[]string{"mode"},
		),
		samplesWritten: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sstv_samples_written_total",
				Help: "Total number of PCM samples written, by mode.",
			},
			[]string{"mode"},
		),
		encodeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sstv_encode_duration_seconds",
				Help:    "Wall-clock duration of completed encoding runs, by mode.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}
}

// EncodeStarted implements sstv.EncodeObserver.
func (m *EncodeMetrics) EncodeStarted(mode sstv.Mode, width, height int) {
	m.activeMode = mode.String()
	m.startedAt = time.Now()
	m.toneCount = 0
	m.sampleCount = 0
	m.runsTotal.WithLabelValues(m.activeMode).Inc()
}

// ToneEmitted implements sstv.EncodeObserver.
func (m *EncodeMetrics) ToneEmitted(freqHz, durationMs float64) {
	m.toneCount++
	m.tonesEmittedTotal.WithLabelValues(m.activeMode).Inc()
}

// EncodeCompleted implements sstv.EncodeObserver, recording the run's
// wall-clock duration since EncodeStarted. totalDurationMs, the summed
// audio duration of the emitted tones, is not recorded.
func (m *EncodeMetrics) EncodeCompleted(totalDurationMs float64) {
	m.encodeDuration.WithLabelValues(m.activeMode).Observe(time.Since(m.startedAt).Seconds())
}

// ObserveSamplesWritten records the PCM sink's final sample count for
// the active mode. Called by the caller after Encode returns, since
// the observer interface itself has no visibility into sink writes.
func (m *EncodeMetrics) ObserveSamplesWritten(n int64) {
	m.samplesWritten.WithLabelValues(m.activeMode).Add(float64(n))
}

// ServeMetrics starts a best-effort background HTTP server exposing
// /metrics on addr. Errors are logged by the caller via the returned
// channel; ServeMetrics itself never blocks.
func ServeMetrics(addr string) <-chan error {
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		errCh <- http.ListenAndServe(addr, mux)
	}()
	return errCh
}
