package dataset

import (
	"errors"
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
)

// Filter is a declarative row predicate. Zero-valued fields impose no
// constraint.
type Filter struct {
	Period domain.YearRange
	Genre  string
}

// Apply narrows t by year range and then by genre.
func (f Filter) Apply(t *domain.Table) (*domain.Table, error) {
	out, err := FilterByYear(t, f.Period.Start, f.Period.End)
	if err != nil {
		return nil, err
	}
	return FilterByGenre(out, f.Genre)
}

// FilterByYear keeps the rows whose year satisfies every supplied inclusive
// bound. Rows with a null year never satisfy a bound. With both bounds nil
// the input table is returned as is.
func FilterByYear(t *domain.Table, start, end *int) (*domain.Table, error) {
	if start == nil && end == nil {
		return t, nil
	}

	j, err := columnIndex(t, domain.ColumnYear, domain.ColumnInt)
	if err != nil {
		return nil, err
	}

	period := domain.YearRange{Start: start, End: end}
	return t.Where(func(row domain.Row) bool {
		year, ok := row[j].(int64)
		return ok && period.Contains(year)
	}), nil
}

// FilterByGenre keeps the rows whose genre equals genre. An empty genre is
// the identity filter.
func FilterByGenre(t *domain.Table, genre string) (*domain.Table, error) {
	if genre == "" {
		return t, nil
	}

	j, err := columnIndex(t, domain.ColumnGenre, domain.ColumnString)
	if err != nil {
		return nil, err
	}

	return t.Where(func(row domain.Row) bool {
		g, ok := row[j].(string)
		return ok && g == genre
	}), nil
}

func columnIndex(t *domain.Table, name string, want domain.ColumnType) (int, error) {
	for j, c := range t.Columns() {
		if c.Name != name {
			continue
		}
		if c.Type != want {
			return 0, &domain.FilterError{
				Column: name,
				Err:    fmt.Errorf("column is %s, filter requires %s", c.Type, want),
			}
		}
		return j, nil
	}
	return 0, &domain.FilterError{Column: name, Err: errors.New("column not found")}
}
