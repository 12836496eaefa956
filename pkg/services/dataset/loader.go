package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	utf8BOM    = "\uFEFF"
	dateLayout = "2006-01-02"
)

// naTokens are read as null in every column.
var naTokens = []string{"", "N/A", "n/a", "NA", "NaN", "nan", "null", "NULL", "None", "#N/A"}

type Options struct {
	// Comma overrides the delimiter implied by the file extension.
	Comma rune
	// Sheet selects the XLSX sheet; the first sheet is used when empty.
	Sheet string
	// CastSales converts the sales columns to floats.
	CastSales bool
	// DateColumns are parsed with the 2006-01-02 layout.
	DateColumns []string
}

func DefaultOptions() Options {
	return Options{CastSales: true}
}

// Loader reads a delimited or XLSX source into a normalised table.
type Loader struct {
	opts Options
}

func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// Load reads path and normalises column types. Every failure is reported as
// a *domain.LoadError.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Table, error) {
	logger := zerolog.Ctx(ctx)

	records, err := l.readRecords(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &domain.LoadError{Path: path, Err: errors.New("no header row")}
	}

	header := normalizeHeader(records[0])
	columns, err := l.columns(header)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}

	rows := make([]domain.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := convertRecord(columns, record)
		if err != nil {
			// +2: one for the header, one for 1-based line numbers
			return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("line %d: %w", i+2, err)}
		}
		rows = append(rows, row)
	}

	table, err := domain.NewTable(columns, rows)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}

	logger.Info().
		Str("path", path).
		Int("rows", table.Len()).
		Int("columns", len(columns)).
		Msg("dataset loaded")
	return table, nil
}

func (l *Loader) readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return l.readSheet(path)
	case ".tsv", ".tab":
		return l.readDelimited(path, '\t')
	default:
		return l.readDelimited(path, ',')
	}
}

func (l *Loader) readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	if l.opts.Comma != 0 {
		r.Comma = l.opts.Comma
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	// excelize drops trailing empty cells; pad them back to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), width)
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func (l *Loader) columns(header []string) ([]domain.Column, error) {
	columns := make([]domain.Column, len(header))
	for i, name := range header {
		if name == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		columns[i] = domain.Column{Name: name, Type: l.columnType(name)}
	}
	return columns, nil
}

func (l *Loader) columnType(name string) domain.ColumnType {
	switch {
	case name == domain.ColumnYear:
		return domain.ColumnInt
	case l.opts.CastSales && slices.Contains(domain.SalesColumns, name):
		return domain.ColumnFloat
	case slices.Contains(l.opts.DateColumns, name):
		return domain.ColumnDate
	default:
		return domain.ColumnString
	}
}

func convertRecord(columns []domain.Column, record []string) (domain.Row, error) {
	if len(record) != len(columns) {
		return nil, fmt.Errorf("got %d fields, expected %d", len(record), len(columns))
	}

	row := make(domain.Row, len(columns))
	for j, raw := range record {
		cell, err := convertCell(columns[j].Type, raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", columns[j].Name, err)
		}
		row[j] = cell
	}
	return row, nil
}

func convertCell(t domain.ColumnType, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if slices.Contains(naTokens, s) {
		return nil, nil
	}

	switch t {
	case domain.ColumnInt:
		return parseInt(s)
	case domain.ColumnFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return f, nil
	case domain.ColumnDate:
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		return d, nil
	default:
		return raw, nil
	}
}

// parseInt accepts integral floats such as "2012.0" as spreadsheets often
// store years that way.
func parseInt(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}
