package store

import "time"

type ReportRun struct {
	ID           string
	Title        string
	Source       string
	StartYear    *int
	EndYear      *int
	Genre        string
	Metrics      []string
	RowsLoaded   int
	RowsSelected int
	CreatedAt    time.Time
	Values       []ReportValue
}

// ReportValue is one merged report entry; Value holds its JSON encoding.
type ReportValue struct {
	Ordinal int
	Name    string
	Value   string
}
