package metrics

import (
	"fmt"
	"strings"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
)

const (
	KeyGenreBreakdown = "pct_per_genre"
	DefaultGenre      = "Shooter"
	unknownGenre      = "Unknown"
)

// GenreBreakdown reports the share of rows per genre as rounded
// percentages. An empty table yields an empty breakdown.
func GenreBreakdown() domain.Metric {
	return NewMetricFunc("genre_breakdown", func(t *domain.Table) (*domain.MetricResult, error) {
		genres, valid, err := t.Strings(domain.ColumnGenre)
		if err != nil {
			return nil, err
		}

		breakdown := domain.Breakdown{}
		if len(genres) == 0 {
			return single(KeyGenreBreakdown, breakdown), nil
		}

		counts := make(map[string]int)
		for i, g := range genres {
			if !valid[i] {
				g = unknownGenre
			}
			counts[g]++
		}
		for g, n := range counts {
			breakdown[g] = round2(float64(n) / float64(len(genres)) * 100)
		}
		return single(KeyGenreBreakdown, breakdown), nil
	})
}

// GenreShare reports the percentage of rows of a single genre. The genre is
// fixed when the metric is built; an empty genre means DefaultGenre.
func GenreShare(genre string) domain.Metric {
	if genre == "" {
		genre = DefaultGenre
	}
	key := GenreShareKey(genre)

	return NewMetricFunc("genre_share:"+genre, func(t *domain.Table) (*domain.MetricResult, error) {
		genres, valid, err := t.Strings(domain.ColumnGenre)
		if err != nil {
			return nil, err
		}
		if len(genres) == 0 {
			return single(key, 0.0), nil
		}

		var n int
		for i, g := range genres {
			if valid[i] && g == genre {
				n++
			}
		}
		return single(key, round2(float64(n)/float64(len(genres))*100)), nil
	})
}

func GenreShareKey(genre string) string {
	return fmt.Sprintf("pct_%s_games", strings.ToLower(strings.ReplaceAll(genre, " ", "_")))
}
