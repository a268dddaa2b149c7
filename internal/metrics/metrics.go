package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the Prometheus metrics for the analyzer service
type Metrics struct {
	BatchesTotal       prometheus.Counter
	EventsTotal        prometheus.Counter
	EventsInvalidTotal prometheus.Counter
	AttacksTotal       prometheus.Counter
	ThreatsTotal       prometheus.Counter
	AnomaliesTotal     prometheus.Counter
	ReportsFailedTotal prometheus.Counter
	NatsPublishErrors  prometheus.Counter
	ReportsStored      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all counters
func NewMetrics() *Metrics {
	return &Metrics{
		BatchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "analysis_batches_total",
			Help: "Total number of event batches analyzed",
		}),
		EventsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "events_analyzed_total",
			Help: "Total number of events analyzed",
		}),
		EventsInvalidTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "events_invalid_total",
			Help: "Total number of invalid events rejected",
		}),
		AttacksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attacks_detected_total",
			Help: "Total number of attacks detected",
		}),
		ThreatsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "threats_detected_total",
			Help: "Total number of threats detected",
		}),
		AnomaliesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anomalies_detected_total",
			Help: "Total number of anomalies detected",
		}),
		ReportsFailedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reports_failed_total",
			Help: "Total number of analysis passes that produced an error report",
		}),
		NatsPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Total number of NATS publish errors",
		}),
		ReportsStored: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "reports_stored",
			Help: "Number of reports currently held in the store",
		}),
	}
}

// IncrementBatchesTotal increments the analysis_batches_total counter
func (m *Metrics) IncrementBatchesTotal() {
	m.BatchesTotal.Inc()
}

// AddEventsAnalyzed adds to the events_analyzed_total counter
func (m *Metrics) AddEventsAnalyzed(count int) {
	m.EventsTotal.Add(float64(count))
}

// IncrementEventsInvalid increments the events_invalid_total counter
func (m *Metrics) IncrementEventsInvalid() {
	m.EventsInvalidTotal.Inc()
}

// AddAttacksDetected adds to the attacks_detected_total counter
func (m *Metrics) AddAttacksDetected(count int) {
	m.AttacksTotal.Add(float64(count))
}

// AddThreatsDetected adds to the threats_detected_total counter
func (m *Metrics) AddThreatsDetected(count int) {
	m.ThreatsTotal.Add(float64(count))
}

// AddAnomaliesDetected adds to the anomalies_detected_total counter
func (m *Metrics) AddAnomaliesDetected(count int) {
	m.AnomaliesTotal.Add(float64(count))
}

// IncrementReportsFailed increments the reports_failed_total counter
func (m *Metrics) IncrementReportsFailed() {
	m.ReportsFailedTotal.Inc()
}

// IncrementNatsPublishErrors increments the nats_publish_errors_total counter
func (m *Metrics) IncrementNatsPublishErrors() {
	m.NatsPublishErrors.Inc()
}

// SetReportsStored sets the reports_stored gauge
func (m *Metrics) SetReportsStored(count int) {
	m.ReportsStored.Set(float64(count))
}
