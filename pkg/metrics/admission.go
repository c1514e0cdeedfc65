package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AdmissionMetrics records the outcomes of shipment admission attempts.
type AdmissionMetrics struct {
	duration *prometheus.HistogramVec
	admitted prometheus.Counter
	rejected *prometheus.CounterVec
}

// Rejection reasons used as label values.
const (
	ReasonQuota        = "quota"
	ReasonNeedInactive = "need_inactive"
)

// NewAdmissionMetrics registers the admission metrics on the provided registerer.
func NewAdmissionMetrics(reg prometheus.Registerer) *AdmissionMetrics {
	if reg == nil {
		return &AdmissionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shipment_admission_duration_seconds",
		Help:    "Duration of shipment admission transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	admitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shipments_admitted_total",
		Help: "Shipments admitted by the controller.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_rejected_total",
		Help: "Shipment admissions rejected, by reason.",
	}, []string{"reason"})
	reg.MustRegister(duration, admitted, rejected)
	return &AdmissionMetrics{
		duration: duration,
		admitted: admitted,
		rejected: rejected,
	}
}

// ObserveDuration records how long an admission attempt took.
func (m *AdmissionMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncAdmitted increments the admitted counter.
func (m *AdmissionMetrics) IncAdmitted() {
	if m == nil || m.admitted == nil {
		return
	}
	m.admitted.Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (m *AdmissionMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
