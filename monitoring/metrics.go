package monitoring

import (
	"net/http"
	"time"

	"course-dashboard/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	loadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_load_duration_seconds",
			Help:    "Duration of dashboard load cycles",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"result"},
	)

	loadOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_load_operations_total",
			Help: "Total dashboard load cycles",
		},
		[]string{"result"},
	)

	collectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_collection_items",
			Help: "Number of items per collection in the last successful load",
		},
		[]string{"collection"},
	)

	registrations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_registrations",
			Help: "Registrations in the last successful load by payment state",
		},
		[]string{"paid"},
	)

	revenue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_revenue",
			Help: "Revenue over paid registrations in the last successful load",
		},
	)

	notifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_notify_failures_total",
			Help: "Refresh notifications that could not be published",
		},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Monitor records dashboard metrics. The zero value is ready to use.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// TrackLoad records one load cycle. stats is ignored when failed.
func (m *Monitor) TrackLoad(duration time.Duration, failed bool, stats models.Stats) {
	result := resultSuccess
	if failed {
		result = resultFailure
	}
	loadDuration.WithLabelValues(result).Observe(duration.Seconds())
	loadOperations.WithLabelValues(result).Inc()

	if failed {
		return
	}
	m.TrackCollections(stats.Totals)
	registrations.WithLabelValues("true").Set(float64(stats.PaidCount))
	registrations.WithLabelValues("false").Set(float64(stats.UnpaidCount))
	revenue.Set(stats.Revenue.InexactFloat64())
}

func (m *Monitor) TrackCollections(t models.Totals) {
	collectionSize.WithLabelValues("lecturers").Set(float64(t.Lecturers))
	collectionSize.WithLabelValues("participants").Set(float64(t.Participants))
	collectionSize.WithLabelValues("rooms").Set(float64(t.Rooms))
	collectionSize.WithLabelValues("courses").Set(float64(t.Courses))
	collectionSize.WithLabelValues("registrations").Set(float64(t.Registrations))
}

// TrackCollection sets a single collection gauge, used by the startup census.
func (m *Monitor) TrackCollection(name string, n int) {
	collectionSize.WithLabelValues(name).Set(float64(n))
}

func (m *Monitor) TrackNotifyFailure() {
	notifyFailures.Inc()
}

func (m *Monitor) TrackRateLimited() {
	rateLimited.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
