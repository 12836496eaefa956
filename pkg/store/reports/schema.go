package reports

// The archive DDL is portable between DuckDB and Postgres.
const ReportRunsSchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id VARCHAR NOT NULL PRIMARY KEY,
		title VARCHAR NOT NULL,
		source VARCHAR NOT NULL,
		start_year INTEGER NULL,
		end_year INTEGER NULL,
		genre VARCHAR NULL,
		metrics VARCHAR NOT NULL,
		rows_loaded INTEGER NOT NULL,
		rows_selected INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
`

const ReportValuesSchema = `
	CREATE TABLE IF NOT EXISTS report_values (
		run_id VARCHAR NOT NULL,
		ordinal INTEGER NOT NULL,
		metric_name VARCHAR NOT NULL,
		metric_value VARCHAR NOT NULL,
		PRIMARY KEY (run_id, ordinal)
	);
`

// BootQueries create the archive tables when missing.
var BootQueries = []string{
	ReportRunsSchema,
	ReportValuesSchema,
}
