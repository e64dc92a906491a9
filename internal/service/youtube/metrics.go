package youtube

import (
	"time"

	"github.com/kapu/youtube-data-go/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Request status labels.
const (
	statusOK            = "ok"
	statusNotFound      = "not_found"
	statusQuotaExceeded = "quota_exceeded"
	statusError         = "error"
)

// Metrics holds the Prometheus collectors of the API client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	QuotaUnitsUsed  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytdata_api_requests_total",
				Help: "YouTube Data API calls, by operation and outcome.",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ytdata_api_request_duration_seconds",
				Help:    "YouTube Data API call duration in seconds, by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		QuotaUnitsUsed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ytdata_quota_units_used",
				Help: "Quota units spent since the last daily reset.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.QuotaUnitsUsed)
	}
	return m
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, statusOf(err)).Inc()
	if !start.IsZero() {
		m.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) setQuotaUsed(used int) {
	if m == nil {
		return
	}
	m.QuotaUnitsUsed.Set(float64(used))
}

func statusOf(err error) string {
	var upstream *errors.UpstreamError
	switch {
	case err == nil:
		return statusOK
	case errors.IsNotFound(err):
		return statusNotFound
	case errors.As(err, &upstream) && upstream.Reason == "quotaExceeded":
		return statusQuotaExceeded
	default:
		return statusError
	}
}
