package reports

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/vgsales-report/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runColumns = []string{
	"id", "title", "source", "start_year", "end_year", "genre",
	"metrics", "rows_loaded", "rows_selected", "created_at",
}

func sampleRun() store.ReportRun {
	year := 2012
	return store.ReportRun{
		ID:           "run-1",
		Title:        "Video game sales 2012-N/A",
		Source:       "vgsales.csv",
		StartYear:    &year,
		Metrics:      []string{"count", "total_sales"},
		RowsLoaded:   3,
		RowsSelected: 2,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Values: []store.ReportValue{
			{Ordinal: 0, Name: "Number of games", Value: "2"},
			{Ordinal: 1, Name: "Total Sales", Value: "15.0"},
		},
	}
}

func TestReportStore_Add_InsertsRunAndValuesInTransaction(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	run := sampleRun()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).
		WithArgs("run-1", run.Title, "vgsales.csv", int64(2012), nil, nil,
			`["count","total_sales"]`, 3, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO report_values"))
	prep.ExpectExec().WithArgs("run-1", 0, "Number of games", "2").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("run-1", 1, "Total Sales", "15.0").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	err = s.Add(context.Background(), run)

	// Then
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportStore_Add_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.Add(context.Background(), sampleRun())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportStore_Add_JoinsContextTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO report_values"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.Add(WithTransaction(context.Background(), tx), sampleRun())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "commit is left to the caller")
}

func TestReportStore_Get(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-1", "title", "vgsales.csv", int64(2012), nil, nil, `["count","total_sales"]`, 3, 2, created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_values")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"ordinal", "metric_name", "metric_value"}).
			AddRow(0, "Number of games", "2").
			AddRow(1, "Total Sales", "15.0"))

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	run, err := s.Get(context.Background(), "run-1")

	// Then
	require.NoError(t, err)
	require.NotNil(t, run.StartYear)
	assert.Equal(t, 2012, *run.StartYear)
	assert.Nil(t, run.EndYear)
	assert.Equal(t, []string{"count", "total_sales"}, run.Metrics)
	assert.Equal(t, created, run.CreatedAt)
	require.Len(t, run.Values, 2)
	assert.Equal(t, "15.0", run.Values[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportStore_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(runColumns))

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-2", "b", "b.csv", nil, nil, "RPG", `["count"]`, 5, 5, now).
			AddRow("run-1", "a", "a.csv", int64(2012), int64(2012), nil, "[]", 3, 2, now.Add(-time.Hour)))

	s, err := NewStore(db)
	require.NoError(t, err)

	runs, err := s.List(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "RPG", runs[0].Genre)
	assert.Empty(t, runs[1].Metrics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportStore_MetricsWithSeparatorsRoundTrip(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	run := sampleRun()
	run.Values = nil
	run.Metrics = []string{"count", "genre_share:Role-Playing, Action"}
	stored := `["count","genre_share:Role-Playing, Action"]`

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).
		WithArgs("run-1", run.Title, "vgsales.csv", int64(2012), nil, nil,
			stored, 3, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO report_values"))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-1", run.Title, "vgsales.csv", int64(2012), nil, nil, stored, 3, 2, run.CreatedAt))
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_values")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"ordinal", "metric_name", "metric_value"}))

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	require.NoError(t, s.Add(context.Background(), run))
	got, err := s.Get(context.Background(), "run-1")

	// Then
	require.NoError(t, err)
	assert.Equal(t, run.Metrics, got.Metrics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportStore_Get_RejectsMalformedMetrics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-1", "title", "vgsales.csv", nil, nil, nil, "count,total_sales", 3, 2, time.Now()))

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "run-1")

	assert.ErrorContains(t, err, "decode metrics")
}

func TestNewStore_RejectsNilDB(t *testing.T) {
	var db *sql.DB
	_, err := NewStore(db)
	assert.Error(t, err)
}
