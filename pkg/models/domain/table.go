package domain

import (
	"fmt"
	"time"
)

// Canonical columns of the sales dataset.
const (
	ColumnRank        = "Rank"
	ColumnName        = "Name"
	ColumnPlatform    = "Platform"
	ColumnYear        = "Year"
	ColumnGenre       = "Genre"
	ColumnPublisher   = "Publisher"
	ColumnNASales     = "NA_Sales"
	ColumnEUSales     = "EU_Sales"
	ColumnJPSales     = "JP_Sales"
	ColumnOtherSales  = "Other_Sales"
	ColumnGlobalSales = "Global_Sales"
)

// SalesColumns lists the regional sales columns followed by the global one.
var SalesColumns = []string{
	ColumnNASales,
	ColumnEUSales,
	ColumnJPSales,
	ColumnOtherSales,
	ColumnGlobalSales,
}

type ColumnType int

const (
	ColumnString ColumnType = iota
	ColumnInt
	ColumnFloat
	ColumnDate
)

func (c ColumnType) String() string {
	switch c {
	case ColumnString:
		return "string"
	case ColumnInt:
		return "int"
	case ColumnFloat:
		return "float"
	case ColumnDate:
		return "date"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(c))
	}
}

type Column struct {
	Name string
	Type ColumnType
}

// Row holds one cell per table column. A nil cell is null; otherwise the
// cell holds string, int64, float64 or time.Time matching the column type.
type Row []any

// Table is an immutable, ordered collection of uniformly shaped rows.
type Table struct {
	columns []Column
	index   map[string]int
	rows    []Row
}

// NewTable builds a table and checks that every row matches the column set
// and that non-null cells carry the column's Go type.
func NewTable(columns []Column, rows []Row) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, exists := index[c.Name]; exists {
			return nil, fmt.Errorf("duplicate column: %s", c.Name)
		}
		index[c.Name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
		for j, cell := range row {
			if !cellMatches(columns[j].Type, cell) {
				return nil, fmt.Errorf("row %d column %s: value %v is not of type %s",
					i, columns[j].Name, cell, columns[j].Type)
			}
		}
	}

	return &Table{
		columns: append([]Column(nil), columns...),
		index:   index,
		rows:    rows,
	}, nil
}

func cellMatches(t ColumnType, cell any) bool {
	if cell == nil {
		return true
	}
	switch t {
	case ColumnString:
		_, ok := cell.(string)
		return ok
	case ColumnInt:
		_, ok := cell.(int64)
		return ok
	case ColumnFloat:
		_, ok := cell.(float64)
		return ok
	case ColumnDate:
		_, ok := cell.(time.Time)
		return ok
	}
	return false
}

// Columns returns a copy of the column set.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Value returns the cell of row i in the named column.
func (t *Table) Value(i int, column string) (any, bool) {
	j, ok := t.index[column]
	if !ok {
		return nil, false
	}
	return t.rows[i][j], true
}

// Where returns a new table with the rows accepted by keep. Rows are shared
// with the receiver; neither table is modified afterwards.
func (t *Table) Where(keep func(Row) bool) *Table {
	rows := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{
		columns: t.columns,
		index:   t.index,
		rows:    rows,
	}
}

// Ints returns the non-null cells of an Int column.
func (t *Table) Ints(column string) ([]int64, error) {
	j, err := t.typedColumn(column, ColumnInt)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(t.rows))
	for _, row := range t.rows {
		if v, ok := row[j].(int64); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Floats returns the cells of a Float column; nulls are reported as zero
// together with a false entry in the valid slice.
func (t *Table) Floats(column string) (values []float64, valid []bool, err error) {
	j, err := t.typedColumn(column, ColumnFloat)
	if err != nil {
		return nil, nil, err
	}
	values = make([]float64, len(t.rows))
	valid = make([]bool, len(t.rows))
	for i, row := range t.rows {
		if v, ok := row[j].(float64); ok {
			values[i] = v
			valid[i] = true
		}
	}
	return values, valid, nil
}

// Strings returns the cells of a String column with nulls as empty strings.
func (t *Table) Strings(column string) (values []string, valid []bool, err error) {
	j, err := t.typedColumn(column, ColumnString)
	if err != nil {
		return nil, nil, err
	}
	values = make([]string, len(t.rows))
	valid = make([]bool, len(t.rows))
	for i, row := range t.rows {
		if v, ok := row[j].(string); ok {
			values[i] = v
			valid[i] = true
		}
	}
	return values, valid, nil
}

func (t *Table) typedColumn(column string, want ColumnType) (int, error) {
	j, ok := t.index[column]
	if !ok {
		return 0, fmt.Errorf("column %q not found", column)
	}
	if got := t.columns[j].Type; got != want {
		return 0, fmt.Errorf("column %q is %s, expected %s", column, got, want)
	}
	return j, nil
}
