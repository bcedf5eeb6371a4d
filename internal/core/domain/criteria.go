package domain

import (
	"fmt"
	"math"
	"strings"
)

// AllArtists is the artist option meaning "no artist filter".
const AllArtists = "Todos"

// Popularity is scored on a 0–100 scale.
const (
	MinPopularity = 0
	MaxPopularity = 100
)

// PopularityOf converts a stored popularity score. The value must be a
// whole number on the popularity scale.
func PopularityOf(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < MinPopularity || f > MaxPopularity {
		return 0, fmt.Errorf("%v is outside %d-%d", f, MinPopularity, MaxPopularity)
	}
	return int(f), nil
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Criteria is the set of user-chosen filters for one recomputation pass.
type Criteria struct {
	Genres     []string `json:"genres"`
	Subgenres  []string `json:"subgenres"`
	Years      IntRange `json:"years"`
	Popularity IntRange `json:"popularity"`
	Artist     string   `json:"artist"`
}

// IsAllArtists reports whether artist is a "no filter" marker.
func IsAllArtists(artist string) bool {
	switch strings.TrimSpace(artist) {
	case "", AllArtists, "All":
		return true
	}
	return false
}

// ArtistFiltered reports whether the artist predicate applies.
func (c Criteria) ArtistFiltered() bool {
	return !IsAllArtists(c.Artist)
}

// Validate rejects inverted ranges and out-of-scale popularity bounds.
func (c Criteria) Validate() error {
	var problems []string
	if c.Years.Min > c.Years.Max {
		problems = append(problems, fmt.Sprintf("year range %d-%d is inverted", c.Years.Min, c.Years.Max))
	}
	if c.Popularity.Min > c.Popularity.Max {
		problems = append(problems, fmt.Sprintf("popularity range %d-%d is inverted", c.Popularity.Min, c.Popularity.Max))
	}
	if c.Popularity.Min < MinPopularity || c.Popularity.Max > MaxPopularity {
		problems = append(problems, fmt.Sprintf("popularity range must lie within %d-%d", MinPopularity, MaxPopularity))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCriteria, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultCriteria is the initial selection: every genre and subgenre, the
// full year and popularity ranges, and no artist filter.
func DefaultCriteria(d *Dataset) Criteria {
	genres := AvailableGenres(d)
	years, _ := d.YearBounds()
	return Criteria{
		Genres:     genres,
		Subgenres:  AvailableSubgenres(d, genres),
		Years:      years,
		Popularity: IntRange{Min: MinPopularity, Max: MaxPopularity},
		Artist:     AllArtists,
	}
}
