package domain

import (
	"fmt"
	"time"
)

// Metadata keys appended to every report.
const (
	KeyReportStartYear = "report_start_year"
	KeyReportEndYear   = "report_end_year"
)

// Report represents a complete sales report
type Report struct {
	ID           string
	Title        string
	Source       string
	Period       YearRange
	Genre        string
	GeneratedAt  time.Time
	RowsLoaded   int
	RowsSelected int
	// Values holds the merged metric results followed by the range metadata
	Values *MetricResult
}

// YearRange is an inclusive range of release years. A nil bound is unset;
// zero is a configured bound like any other year.
type YearRange struct {
	Start *int
	End   *int
}

// Contains reports whether year satisfies every configured bound.
func (p YearRange) Contains(year int64) bool {
	if p.Start != nil && year < int64(*p.Start) {
		return false
	}
	if p.End != nil && year > int64(*p.End) {
		return false
	}
	return true
}

func (p YearRange) IsUnbounded() bool {
	return p.Start == nil && p.End == nil
}

// StartValue returns the configured start year or NotAvailable.
func (p YearRange) StartValue() any {
	return boundValue(p.Start)
}

// EndValue returns the configured end year or NotAvailable.
func (p YearRange) EndValue() any {
	return boundValue(p.End)
}

func (p YearRange) String() string {
	return fmt.Sprintf("%v-%v", p.StartValue(), p.EndValue())
}

func boundValue(b *int) any {
	if b == nil {
		return NotAvailable
	}
	return *b
}

// Year returns a pointer to y, for building ranges in place.
func Year(y int) *int {
	return &y
}
