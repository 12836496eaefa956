package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/store/reports"
	"github.com/marcboeker/go-duckdb/v2"
)

type Settings struct {
	DbPath  string
	Threads int
}

// NewDB opens an embedded DuckDB database and creates the archive tables on
// every new connection.
func NewDB(settings Settings) (*sql.DB, error) {
	if settings.Threads <= 0 {
		settings.Threads = 4
	}

	dsn := fmt.Sprintf("%s?threads=%d", settings.DbPath, settings.Threads)
	c, err := duckdb.NewConnector(dsn, func(exec driver.ExecerContext) error {
		for _, query := range reports.BootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
