package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/vgsales-report/pkg/store/duckdb"
	"github.com/de-tools/vgsales-report/pkg/store/postgres"
	"github.com/de-tools/vgsales-report/pkg/store/reports"
)

// Archive is a report store together with the connection backing it.
type Archive struct {
	reports.Store
	db      *sql.DB
	backend string
}

// Open connects to the archive named by dsn: postgres:// and postgresql://
// URLs select Postgres, anything else is a DuckDB database file.
func Open(ctx context.Context, dsn string) (*Archive, error) {
	if dsn == "" {
		return nil, fmt.Errorf("archive dsn is empty")
	}

	var (
		db      *sql.DB
		backend string
		err     error
	)
	if IsPostgres(dsn) {
		backend = "postgres"
		db, err = postgres.NewDB(ctx, dsn)
	} else {
		backend = "duckdb"
		db, err = duckdb.NewDB(duckdb.Settings{DbPath: dsn})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s archive: %w", backend, err)
	}

	s, err := reports.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archive{Store: s, db: db, backend: backend}, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func (a *Archive) Backend() string {
	return a.backend
}

func (a *Archive) Close() error {
	return a.db.Close()
}
