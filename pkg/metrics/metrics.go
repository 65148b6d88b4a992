package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// ValidationMetrics counts slot validations by outcome.
type ValidationMetrics struct {
	validationsTotal *prometheus.CounterVec
	conflicts        prometheus.Histogram
}

func NewValidationMetrics(reg prometheus.Registerer) *ValidationMetrics {
	m := &ValidationMetrics{
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "slot",
			Name:      "validations_total",
			Help:      "Total slot validations by outcome",
		}, []string{"outcome"}),
		conflicts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agenda",
			Subsystem: "slot",
			Name:      "conflicts",
			Help:      "Conflicting bookings found per validation",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.validationsTotal, m.conflicts)
	return m
}

// Observe implements scheduler.Recorder.
func (m *ValidationMetrics) Observe(outcome models.Outcome, conflicts int) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(string(outcome)).Inc()
	m.conflicts.Observe(float64(conflicts))
}
