package domain

import (
	"slices"
	"strings"
)

// selection is a set of chosen values where an empty choice means "no
// restriction". Both the filter and the dependent option lists go through it.
type selection map[string]struct{}

func newSelection(values []string) selection {
	if len(values) == 0 {
		return nil
	}
	s := make(selection, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s selection) matches(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// AvailableGenres returns the sorted distinct genres of the dataset.
func AvailableGenres(d *Dataset) []string {
	return distinct(View(d.songs), nil, func(s Song) string { return s.Genre })
}

// AvailableSubgenres returns the sorted distinct subgenres among songs whose
// genre is selected. An empty selection covers the whole dataset.
func AvailableSubgenres(d *Dataset, selectedGenres []string) []string {
	return distinct(View(d.songs), newSelection(selectedGenres), func(s Song) string { return s.Subgenre })
}

// AvailableArtists returns the sorted distinct artists among songs whose
// genre is selected. An empty selection covers the whole dataset.
func AvailableArtists(d *Dataset, selectedGenres []string) []string {
	return distinct(View(d.songs), newSelection(selectedGenres), func(s Song) string { return s.Artist })
}

// SubgenreGenres maps each subgenre to the sorted genres it appears under.
// The dataset does not guarantee a subgenre belongs to a single genre.
func SubgenreGenres(d *Dataset) map[string][]string {
	out := make(map[string][]string)
	for _, s := range d.songs {
		if strings.TrimSpace(s.Subgenre) == "" || strings.TrimSpace(s.Genre) == "" {
			continue
		}
		genres := out[s.Subgenre]
		if !slices.Contains(genres, s.Genre) {
			out[s.Subgenre] = append(genres, s.Genre)
		}
	}
	for _, genres := range out {
		slices.Sort(genres)
	}
	return out
}

func distinct(rows View, genres selection, key func(Song) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, s := range rows {
		if !genres.matches(s.Genre) {
			continue
		}
		v := key(s)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Filter returns the rows of rows that satisfy every predicate of c, in their
// original order. Predicates, all combined with AND:
//   - genre in c.Genres (empty: no-op)
//   - subgenre in c.Subgenres (empty: no-op)
//   - year within c.Years; songs without a year never match
//   - popularity within c.Popularity
//   - artist equal to c.Artist unless it is the AllArtists sentinel
func Filter(rows View, c Criteria) View {
	genres := newSelection(c.Genres)
	subgenres := newSelection(c.Subgenres)
	filterArtist := c.ArtistFiltered()

	out := View{}
	for _, s := range rows {
		if !genres.matches(s.Genre) {
			continue
		}
		if !subgenres.matches(s.Subgenre) {
			continue
		}
		if s.Year == nil || !c.Years.Contains(*s.Year) {
			continue
		}
		if !c.Popularity.Contains(s.Popularity) {
			continue
		}
		if filterArtist && s.Artist != c.Artist {
			continue
		}
		out = append(out, s)
	}
	return out
}
