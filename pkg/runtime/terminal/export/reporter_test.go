package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	// Given
	var buf bytes.Buffer
	rep := &domain.Report{
		Title:        "Video game sales 2012-2012",
		Source:       "vgsales.csv",
		RowsLoaded:   3,
		RowsSelected: 2,
		Values: domain.NewMetricResult(
			domain.ResultEntry{Key: "Number of games", Value: 2},
			domain.ResultEntry{Key: "Total Sales", Value: 15.0},
			domain.ResultEntry{Key: "pct_per_genre", Value: domain.Breakdown{"Shooter": 50.0, "RPG": 50.0}},
			domain.ResultEntry{Key: domain.KeyReportEndYear, Value: domain.NotAvailable},
		),
	}

	// When
	err := NewReporter(&buf).Handle(rep)

	// Then
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Video game sales 2012-2012")
	assert.Contains(t, out, "Rows: 2 of 3")
	assert.Contains(t, out, "| Number of games")
	assert.Contains(t, out, "| 15.0 ")
	assert.Contains(t, out, "| pct_per_genre[RPG]")
	assert.Contains(t, out, "| 50.0%")
	assert.Contains(t, out, "| N/A ")
	assert.NotContains(t, out, "Genre:")
}

func TestReporter_HandleHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, NewReporter(&buf).HandleHistory(nil))

		assert.Equal(t, "No archived reports found\n", buf.String())
	})

	t.Run("runs", func(t *testing.T) {
		var buf bytes.Buffer
		reports := []*domain.Report{{
			ID:           "run-1",
			Title:        "Video game sales all years",
			GeneratedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			RowsSelected: 16598,
		}}

		require.NoError(t, NewReporter(&buf).HandleHistory(reports))

		assert.Contains(t, buf.String(), "| run-1")
		assert.Contains(t, buf.String(), "2026-01-02 03:04:05")
		assert.Contains(t, buf.String(), "16598 rows")
	})
}
