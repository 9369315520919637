package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	passesTotal       *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	rowsTotal         *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	latency           *prometheus.HistogramVec
	currentMonthCount prometheus.Gauge
	currentMonthFunds prometheus.Gauge
}

var (
	once   sync.Once
	shared *Recorder
)

// New returns the process-wide recorder. Collectors are registered against
// the default registry once; later calls share the same instance.
func New() *Recorder {
	once.Do(func() {
		shared = newRecorder(promauto.With(prometheus.DefaultRegisterer))
	})
	return shared
}

// NewWithRegistry builds a recorder bound to reg. Used by tests.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	return newRecorder(promauto.With(reg))
}

func newRecorder(f promauto.Factory) *Recorder {
	return &Recorder{
		passesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipowatch_passes_total",
				Help: "Total number of monitoring passes by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipowatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		rowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipowatch_rows_total",
				Help: "Provider records seen per pass, split by outcome",
			},
			[]string{"stage"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipowatch_notifications_total",
				Help: "Push attempts by result",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ipowatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		currentMonthCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "ipowatch_current_month_ipo_count",
			Help: "Listings counted for the current month in the last pass",
		}),
		currentMonthFunds: f.NewGauge(prometheus.GaugeOpts{
			Name: "ipowatch_current_month_funds",
			Help: "Funds raised (100M CNY) for the current month in the last pass",
		}),
	}
}

// RecordPass records a finished pass: ok, fetch_error, persist_error, ...
func (r *Recorder) RecordPass(result string) {
	r.passesTotal.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordRows(fetched, kept, dropped int) {
	r.rowsTotal.WithLabelValues("fetched").Add(float64(fetched))
	r.rowsTotal.WithLabelValues("kept").Add(float64(kept))
	r.rowsTotal.WithLabelValues("dropped").Add(float64(dropped))
}

func (r *Recorder) RecordNotification(result string) {
	r.notifications.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordCurrentMonth(count int, funds float64) {
	r.currentMonthCount.Set(float64(count))
	r.currentMonthFunds.Set(funds)
}
