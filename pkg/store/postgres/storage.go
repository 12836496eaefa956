package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/store/reports"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewDB opens a Postgres connection through the pgx stdlib driver and creates
// the archive tables when missing.
func NewDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	for _, query := range reports.BootQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return db, nil
}
