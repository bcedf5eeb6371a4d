package domain

import (
	"cmp"
	"iter"
	"slices"
)

// DefaultTopN is the size of the ranked table.
const DefaultTopN = 50

// Summary holds the headline metrics of a view. An empty view summarizes to
// all zeros.
type Summary struct {
	Count            int     `json:"count"`
	MeanPopularity   float64 `json:"mean_popularity"`
	MeanDanceability float64 `json:"mean_danceability"`
}

// TopRow is the table projection of a song.
type TopRow struct {
	Name       string `json:"track_name"`
	Artist     string `json:"track_artist"`
	Popularity int    `json:"track_popularity"`
	Genre      string `json:"playlist_genre"`
	Subgenre   string `json:"playlist_subgenre"`
	Year       *int   `json:"year"`
}

// PlotPoint is one scatter plot mark.
type PlotPoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Genre   string  `json:"genre"`
	Tooltip TopRow  `json:"tooltip"`
}

func (s Song) row() TopRow {
	return TopRow{
		Name:       s.Name,
		Artist:     s.Artist,
		Popularity: s.Popularity,
		Genre:      s.Genre,
		Subgenre:   s.Subgenre,
		Year:       s.Year,
	}
}

// Summarize counts the view and averages popularity and danceability.
// Missing danceability values are left out of its mean.
func Summarize(v View) Summary {
	if len(v) == 0 {
		return Summary{}
	}

	var popSum, danceSum float64
	danceN := 0
	for _, s := range v {
		popSum += float64(s.Popularity)
		if isMissing(s.Danceability) {
			continue
		}
		danceSum += s.Danceability
		danceN++
	}

	out := Summary{
		Count:          len(v),
		MeanPopularity: popSum / float64(len(v)),
	}
	if danceN > 0 {
		out.MeanDanceability = danceSum / float64(danceN)
	}
	return out
}

// TopByPopularity returns at most n rows ordered by descending popularity.
// Ties keep their order in v.
func TopByPopularity(v View, n int) []TopRow {
	if n <= 0 || len(v) == 0 {
		return []TopRow{}
	}

	sorted := slices.Clone(v)
	slices.SortStableFunc(sorted, func(a, b Song) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})

	sorted = sorted[:min(n, len(sorted))]
	out := make([]TopRow, len(sorted))
	for i, s := range sorted {
		out[i] = s.row()
	}
	return out
}

// Project lazily maps v onto the x and y fields. Both fields are checked
// before anything is produced. Rows missing either value are skipped.
func Project(v View, x, y NumericField) (iter.Seq[PlotPoint], error) {
	if !x.Valid() {
		return nil, ErrInvalidField
	}
	if !y.Valid() {
		return nil, ErrInvalidField
	}

	return func(yield func(PlotPoint) bool) {
		for _, s := range v {
			xv, yv := x.Value(s), y.Value(s)
			if isMissing(xv) || isMissing(yv) {
				continue
			}
			p := PlotPoint{X: xv, Y: yv, Genre: s.Genre, Tooltip: s.row()}
			if !yield(p) {
				return
			}
		}
	}, nil
}
