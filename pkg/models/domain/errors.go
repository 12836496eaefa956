package domain

import "fmt"

// LoadError reports an input that is missing, unreadable or not tabular.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FilterError reports bounds that cannot be applied to the table.
type FilterError struct {
	Column string
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter on %s: %v", e.Column, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// MetricError reports a metric whose computation failed.
type MetricError struct {
	Metric string
	Err    error
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("metric %s: %v", e.Metric, e.Err)
}

func (e *MetricError) Unwrap() error { return e.Err }

// WriteError reports a report that could not be persisted.
type WriteError struct {
	Destination string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Destination, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
