package dataset

import (
	"errors"
	"testing"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearTable(t *testing.T, years ...any) *domain.Table {
	t.Helper()
	columns := []domain.Column{
		{Name: domain.ColumnName, Type: domain.ColumnString},
		{Name: domain.ColumnYear, Type: domain.ColumnInt},
		{Name: domain.ColumnGenre, Type: domain.ColumnString},
	}
	rows := make([]domain.Row, len(years))
	genres := []string{"Shooter", "RPG", "Action"}
	for i, y := range years {
		if y != nil {
			y = int64(y.(int))
		}
		rows[i] = domain.Row{string(rune('A' + i)), y, genres[i%len(genres)]}
	}
	table, err := domain.NewTable(columns, rows)
	require.NoError(t, err)
	return table
}

func TestFilterByYear_NoBoundsIsIdentity(t *testing.T) {
	table := yearTable(t, 2010, nil, 2012)

	out, err := FilterByYear(table, nil, nil)

	require.NoError(t, err)
	assert.Same(t, table, out)
}

func TestFilterByYear_SoundAndComplete(t *testing.T) {
	table := yearTable(t, 1999, 2005, 2010, 2011, 2012, nil, 2015, 2020)

	for lo := 1995; lo <= 2022; lo += 3 {
		for hi := lo; hi <= 2022; hi += 4 {
			out, err := FilterByYear(table, domain.Year(lo), domain.Year(hi))
			require.NoError(t, err)

			var expected []int64
			all, _ := table.Ints(domain.ColumnYear)
			for _, y := range all {
				if int64(lo) <= y && y <= int64(hi) {
					expected = append(expected, y)
				}
			}
			got, _ := out.Ints(domain.ColumnYear)
			assert.Equal(t, len(expected), out.Len(), "range [%d,%d]", lo, hi)
			assert.ElementsMatch(t, expected, got, "range [%d,%d]", lo, hi)
		}
	}
}

func TestFilterByYear_SingleBound(t *testing.T) {
	table := yearTable(t, 2010, 2011, 2012, nil)

	out, err := FilterByYear(table, domain.Year(2011), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = FilterByYear(table, nil, domain.Year(2010))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestFilterByYear_DoesNotMutateInput(t *testing.T) {
	table := yearTable(t, 2010, 2011, 2012)

	_, err := FilterByYear(table, domain.Year(2012), domain.Year(2012))

	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestFilterByYear_ColumnTypeMismatch(t *testing.T) {
	table, err := domain.NewTable(
		[]domain.Column{{Name: domain.ColumnYear, Type: domain.ColumnString}},
		[]domain.Row{{"2012"}},
	)
	require.NoError(t, err)

	_, err = FilterByYear(table, domain.Year(2012), nil)

	var filterErr *domain.FilterError
	assert.True(t, errors.As(err, &filterErr))
}

func TestFilterByYear_MissingColumn(t *testing.T) {
	table, err := domain.NewTable([]domain.Column{{Name: domain.ColumnName}}, nil)
	require.NoError(t, err)

	_, err = FilterByYear(table, nil, domain.Year(2012))

	var filterErr *domain.FilterError
	assert.True(t, errors.As(err, &filterErr))
}

func TestFilter_ApplyYearThenGenre(t *testing.T) {
	table := yearTable(t, 2012, 2012, 2011, 2012)

	out, err := Filter{
		Period: domain.YearRange{Start: domain.Year(2012), End: domain.Year(2012)},
		Genre:  "Shooter",
	}.Apply(table)

	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	names, _, _ := out.Strings(domain.ColumnName)
	assert.Equal(t, []string{"A", "D"}, names)
}
