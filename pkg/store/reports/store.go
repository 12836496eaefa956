package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/models/store"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("report run not found")

// Store archives report runs. Queries use $n placeholders, which both DuckDB
// and Postgres accept.
type Store interface {
	Add(ctx context.Context, run store.ReportRun) error
	Get(ctx context.Context, id string) (*store.ReportRun, error)
	List(ctx context.Context, limit int) ([]store.ReportRun, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

// Add inserts the run and its values atomically. When ctx carries a
// transaction the insert joins it and leaves commit to the caller.
func (s *reportStore) Add(ctx context.Context, run store.ReportRun) error {
	if run.ID == "" {
		return fmt.Errorf("report run id is required")
	}

	tx := GetTransaction(ctx)
	if tx != nil {
		return s.insert(ctx, tx, run)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.insert(ctx, tx, run); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zerolog.Ctx(ctx).Warn().Err(rbErr).Msg("failed to roll back report insert")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *reportStore) insert(ctx context.Context, tx *sql.Tx, run store.ReportRun) error {
	metrics, err := encodeMetrics(run.Metrics)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO report_runs (
			id, title, source, start_year, end_year, genre,
			metrics, rows_loaded, rows_selected, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`,
		run.ID,
		run.Title,
		run.Source,
		nullInt(run.StartYear),
		nullInt(run.EndYear),
		nullString(run.Genre),
		metrics,
		run.RowsLoaded,
		run.RowsSelected,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_values (run_id, ordinal, metric_name, metric_value)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range run.Values {
		if _, err := stmt.ExecContext(ctx, run.ID, v.Ordinal, v.Name, v.Value); err != nil {
			return fmt.Errorf("insert report value %q: %w", v.Name, err)
		}
	}
	return nil
}

func (s *reportStore) Get(ctx context.Context, id string) (*store.ReportRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, source, start_year, end_year, genre,
			metrics, rows_loaded, rows_selected, created_at
		FROM report_runs
		WHERE id = $1`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, metric_name, metric_value
		FROM report_values
		WHERE run_id = $1
		ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("query report values: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close report values rows")
		}
	}(rows)

	for rows.Next() {
		var v store.ReportValue
		if err := rows.Scan(&v.Ordinal, &v.Name, &v.Value); err != nil {
			return nil, fmt.Errorf("scan report value: %w", err)
		}
		run.Values = append(run.Values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report values: %w", err)
	}
	return run, nil
}

// List returns the most recent runs without their values.
func (s *reportStore) List(ctx context.Context, limit int) ([]store.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, source, start_year, end_year, genre,
			metrics, rows_loaded, rows_selected, created_at
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query report runs: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close report runs rows")
		}
	}(rows)

	var runs []store.ReportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*store.ReportRun, error) {
	var (
		run       store.ReportRun
		startYear sql.NullInt64
		endYear   sql.NullInt64
		genre     sql.NullString
		metrics   string
	)
	err := s.Scan(
		&run.ID,
		&run.Title,
		&run.Source,
		&startYear,
		&endYear,
		&genre,
		&metrics,
		&run.RowsLoaded,
		&run.RowsSelected,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.StartYear = intPtr(startYear)
	run.EndYear = intPtr(endYear)
	run.Genre = genre.String
	if run.Metrics, err = decodeMetrics(metrics); err != nil {
		return nil, err
	}
	return &run, nil
}

// Metric identifiers are stored as a JSON array; genre_share:<genre>
// arguments may contain commas.
func encodeMetrics(metrics []string) (string, error) {
	if metrics == nil {
		metrics = []string{}
	}
	data, err := json.Marshal(metrics)
	if err != nil {
		return "", fmt.Errorf("encode metrics: %w", err)
	}
	return string(data), nil
}

func decodeMetrics(data string) ([]string, error) {
	var metrics []string
	if err := json.Unmarshal([]byte(data), &metrics); err != nil {
		return nil, fmt.Errorf("decode metrics %q: %w", data, err)
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return metrics, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
