package adapters

import (
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/de-tools/vgsales-report/pkg/models/store"
)

func MapDomainReportToStoreRun(report *domain.Report, metrics []string) (store.ReportRun, error) {
	run := store.ReportRun{
		ID:           report.ID,
		Title:        report.Title,
		Source:       report.Source,
		StartYear:    report.Period.Start,
		EndYear:      report.Period.End,
		Genre:        report.Genre,
		Metrics:      append([]string(nil), metrics...),
		RowsLoaded:   report.RowsLoaded,
		RowsSelected: report.RowsSelected,
		CreatedAt:    report.GeneratedAt,
	}

	for i, e := range report.Values.Entries() {
		value, err := domain.MarshalValue(e.Value)
		if err != nil {
			return store.ReportRun{}, fmt.Errorf("encode %q: %w", e.Key, err)
		}
		run.Values = append(run.Values, store.ReportValue{
			Ordinal: i,
			Name:    e.Key,
			Value:   string(value),
		})
	}
	return run, nil
}

func MapStoreRunToDomainReport(run store.ReportRun) (*domain.Report, error) {
	values := domain.NewMetricResult()
	for _, v := range run.Values {
		decoded, err := domain.UnmarshalValue([]byte(v.Value))
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", v.Name, err)
		}
		values.Set(v.Name, decoded)
	}

	return &domain.Report{
		ID:           run.ID,
		Title:        run.Title,
		Source:       run.Source,
		Period:       domain.YearRange{Start: run.StartYear, End: run.EndYear},
		Genre:        run.Genre,
		GeneratedAt:  run.CreatedAt,
		RowsLoaded:   run.RowsLoaded,
		RowsSelected: run.RowsSelected,
		Values:       values,
	}, nil
}
