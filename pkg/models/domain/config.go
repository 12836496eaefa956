package domain

// Metric computes one or more named values from a table. Implementations
// must treat the table as read-only.
type Metric interface {
	Name() string
	Compute(t *Table) (*MetricResult, error)
}

// ReportConfig describes one report run. It is built once and not mutated
// afterwards.
type ReportConfig struct {
	InputFile string
	Period    YearRange
	Genre     string
	Metrics   []Metric
}

func (c ReportConfig) MetricNames() []string {
	names := make([]string, len(c.Metrics))
	for i, m := range c.Metrics {
		names[i] = m.Name()
	}
	return names
}
