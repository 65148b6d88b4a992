package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

func TestValidationMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewValidationMetrics(reg)

	m.Observe(models.OutcomeAccepted, 0)
	m.Observe(models.OutcomeAccepted, 0)
	m.Observe(models.OutcomeRejectedWithSuggestion, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.validationsTotal.WithLabelValues(string(models.OutcomeAccepted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationsTotal.WithLabelValues(string(models.OutcomeRejectedWithSuggestion))))
	assert.Equal(t, 2, testutil.CollectAndCount(m.validationsTotal))
}

func TestValidationMetricsNilSafe(t *testing.T) {
	var m *ValidationMetrics
	m.Observe(models.OutcomeRejectedBlocked, 0)
}
