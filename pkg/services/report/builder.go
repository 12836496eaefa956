package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Builder runs the configured metrics over a filtered table.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build invokes every metric of cfg in order and merges the results. A key
// produced by a later metric replaces the value of an earlier one. The
// report_start_year and report_end_year entries are appended last. The first
// metric failure aborts the build.
func (b *Builder) Build(ctx context.Context, table *domain.Table, cfg domain.ReportConfig) (*domain.Report, error) {
	logger := zerolog.Ctx(ctx)

	values := domain.NewMetricResult()
	for _, m := range cfg.Metrics {
		res, err := m.Compute(table)
		if err != nil {
			return nil, asMetricError(m.Name(), err)
		}
		for _, key := range values.Merge(res) {
			logger.Debug().
				Str("metric", m.Name()).
				Str("key", key).
				Msg("metric overwrote an earlier value")
		}
		logger.Debug().Str("metric", m.Name()).Int("values", res.Len()).Msg("metric computed")
	}

	values.Set(domain.KeyReportStartYear, cfg.Period.StartValue())
	values.Set(domain.KeyReportEndYear, cfg.Period.EndValue())

	return &domain.Report{
		Title:        fmt.Sprintf("Video game sales %s", cfg.Period),
		Source:       cfg.InputFile,
		Period:       cfg.Period,
		Genre:        cfg.Genre,
		RowsSelected: table.Len(),
		Values:       values,
	}, nil
}

func asMetricError(name string, err error) error {
	var metricErr *domain.MetricError
	if errors.As(err, &metricErr) {
		return err
	}
	return &domain.MetricError{Metric: name, Err: err}
}
