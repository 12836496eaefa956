package metrics

import (
	"math"
	"slices"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
)

const (
	KeyGameCount    = "Number of games"
	KeyTotalSales   = "Total Sales"
	KeyAverageSales = "Average sales value of games"
	KeyMedianSales  = "Median sales value of games"
	KeyStdDevSales  = "Sales standard deviation"
)

// GameCount counts the distinct non-null titles.
func GameCount() domain.Metric {
	return NewMetricFunc("count", func(t *domain.Table) (*domain.MetricResult, error) {
		names, valid, err := t.Strings(domain.ColumnName)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(names))
		for i, name := range names {
			if valid[i] {
				seen[name] = struct{}{}
			}
		}
		return single(KeyGameCount, len(seen)), nil
	})
}

// TotalSales sums every sales column over every row.
func TotalSales() domain.Metric {
	return NewMetricFunc("total_sales", func(t *domain.Table) (*domain.MetricResult, error) {
		sums, err := rowSalesSums(t)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, s := range sums {
			total += s
		}
		return single(KeyTotalSales, round2(total)), nil
	})
}

// AverageSales is the mean of the per-row sales sums; 0.0 for an empty table.
func AverageSales() domain.Metric {
	return NewMetricFunc("average_sales", func(t *domain.Table) (*domain.MetricResult, error) {
		sums, err := rowSalesSums(t)
		if err != nil {
			return nil, err
		}
		return single(KeyAverageSales, round2(mean(sums))), nil
	})
}

// MedianSales is the median of the per-row sales sums; 0.0 for an empty table.
func MedianSales() domain.Metric {
	return NewMetricFunc("median_sales", func(t *domain.Table) (*domain.MetricResult, error) {
		sums, err := rowSalesSums(t)
		if err != nil {
			return nil, err
		}
		return single(KeyMedianSales, round2(median(sums))), nil
	})
}

// StdDevSales is the sample standard deviation of the per-row sales sums;
// 0.0 when fewer than two rows are present.
func StdDevSales() domain.Metric {
	return NewMetricFunc("stddev_sales", func(t *domain.Table) (*domain.MetricResult, error) {
		sums, err := rowSalesSums(t)
		if err != nil {
			return nil, err
		}
		return single(KeyStdDevSales, round2(stddev(sums))), nil
	})
}

// rowSalesSums adds the sales columns of each row; null cells count as zero.
func rowSalesSums(t *domain.Table) ([]float64, error) {
	sums := make([]float64, t.Len())
	for _, column := range domain.SalesColumns {
		values, _, err := t.Floats(column)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			sums[i] += v
		}
	}
	return sums, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(n-1))
}
