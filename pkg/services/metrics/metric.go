package metrics

import (
	"math"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
)

// MetricFunc adapts a plain function to domain.Metric.
type MetricFunc struct {
	name string
	fn   func(t *domain.Table) (*domain.MetricResult, error)
}

func NewMetricFunc(name string, fn func(t *domain.Table) (*domain.MetricResult, error)) MetricFunc {
	return MetricFunc{name: name, fn: fn}
}

func (m MetricFunc) Name() string {
	return m.name
}

// Compute runs the wrapped function and reports failures as *domain.MetricError.
func (m MetricFunc) Compute(t *domain.Table) (*domain.MetricResult, error) {
	res, err := m.fn(t)
	if err != nil {
		return nil, &domain.MetricError{Metric: m.name, Err: err}
	}
	return res, nil
}

func single(key string, value any) *domain.MetricResult {
	return domain.NewMetricResult(domain.ResultEntry{Key: key, Value: value})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
