package metric

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metric struct {
	mu sync.Mutex

	procTimeHistogram *prometheus.HistogramVec
	rttTimeHistogram  *prometheus.HistogramVec
	procTime          *prometheus.GaugeVec
	rttTimes          *prometheus.GaugeVec

	frames        *prometheus.CounterVec
	detections    *prometheus.CounterVec
	tracksCreated *prometheus.CounterVec
	tracksRemoved *prometheus.CounterVec
	liveTracks    *prometheus.GaugeVec
}

// RegisterMetrics creates the collectors and registers them with reg.
// A nil bucket slice falls back to prometheus.DefBuckets.
func RegisterMetrics(reg prometheus.Registerer, procTimeBuckets, rttTimeBuckets []float64) *Metric {
	if procTimeBuckets == nil {
		procTimeBuckets = prometheus.DefBuckets
	}
	if rttTimeBuckets == nil {
		rttTimeBuckets = prometheus.DefBuckets
	}

	m := &Metric{
		procTimeHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "processing_time_ms_histogram",
				Help:    "Histogram of processing times.",
				Buckets: procTimeBuckets,
			},
			[]string{"service"},
		),
		rttTimeHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtt_times_ms_histogram",
				Help:    "Histogram of round-trip times.",
				Buckets: rttTimeBuckets,
			},
			[]string{"service"},
		),
		procTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "processing_time_ms",
				Help: "Gauge of processing times.",
			},
			[]string{"service"},
		),
		rttTimes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rtt_times_ms",
				Help: "Gauge of round-trip times for different services.",
			},
			[]string{"service"},
		),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_frames_total",
				Help: "Frames advanced per source.",
			},
			[]string{"source"},
		),
		detections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_detections_total",
				Help: "Detections received per source, after filtering.",
			},
			[]string{"source"},
		),
		tracksCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_tracks_created_total",
				Help: "Tracks started per source.",
			},
			[]string{"source"},
		),
		tracksRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_tracks_removed_total",
				Help: "Tracks dropped after exceeding the max age, per source.",
			},
			[]string{"source"},
		),
		liveTracks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracker_live_tracks",
				Help: "Live tracks per source and state.",
			},
			[]string{"source", "state"},
		),
	}

	reg.MustRegister(
		m.procTimeHistogram,
		m.rttTimeHistogram,
		m.procTime,
		m.rttTimes,
		m.frames,
		m.detections,
		m.tracksCreated,
		m.tracksRemoved,
		m.liveTracks,
	)
	return m
}

func (m *Metric) AddProcessingTime(s string, time float64) {
	m.lock()
	defer m.unlock()
	m.procTimeHistogram.WithLabelValues(s).Observe(time)
	m.procTime.WithLabelValues(s).Set(time)
}

func (m *Metric) AddRttTime(s string, time float64) {
	m.lock()
	defer m.unlock()
	m.rttTimeHistogram.WithLabelValues(s).Observe(time)
	m.rttTimes.WithLabelValues(s).Set(time)
}

// AddFrame records the outcome of one tracker frame for a source.
func (m *Metric) AddFrame(source string, detections, created, removed, confirmed, tentative int) {
	m.lock()
	defer m.unlock()
	m.frames.WithLabelValues(source).Inc()
	m.detections.WithLabelValues(source).Add(float64(detections))
	m.tracksCreated.WithLabelValues(source).Add(float64(created))
	m.tracksRemoved.WithLabelValues(source).Add(float64(removed))
	m.liveTracks.WithLabelValues(source, "confirmed").Set(float64(confirmed))
	m.liveTracks.WithLabelValues(source, "tentative").Set(float64(tentative))
}

// DropSource forgets the live-track gauges of a source that was reset.
func (m *Metric) DropSource(source string) {
	m.lock()
	defer m.unlock()
	m.liveTracks.DeleteLabelValues(source, "confirmed")
	m.liveTracks.DeleteLabelValues(source, "tentative")
}

func (m *Metric) lock() {
	m.mu.Lock()
}

func (m *Metric) unlock() {
	m.mu.Unlock()
}
