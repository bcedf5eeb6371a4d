package domain

import (
	"math"
	"strings"
	"time"
)

// Song is one row of the dataset.
type Song struct {
	TrackID     string     `json:"track_id,omitempty"`
	Name        string     `json:"track_name"`
	Artist      string     `json:"track_artist"`
	Popularity  int        `json:"track_popularity"`
	Album       string     `json:"track_album_name,omitempty"`
	ReleaseDate *time.Time `json:"track_album_release_date"`
	Year        *int       `json:"year"`
	Genre       string     `json:"playlist_genre"`
	Subgenre    string     `json:"playlist_subgenre"`

	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Tempo        float64 `json:"tempo"`
	DurationMs   float64 `json:"duration_ms"`
	Loudness     float64 `json:"loudness"`
}

// releaseLayouts are tried in order. Partial dates resolve to the first day
// of the period.
var releaseLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseReleaseDate parses a release date permissively. It reports false for
// blank or unrecognized input instead of failing.
func ParseReleaseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range releaseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// WithReleaseDate sets ReleaseDate and the derived Year from raw. An
// unparseable value clears both.
func (s Song) WithReleaseDate(raw string) Song {
	t, ok := ParseReleaseDate(raw)
	if !ok {
		s.ReleaseDate = nil
		s.Year = nil
		return s
	}
	year := t.Year()
	s.ReleaseDate = &t
	s.Year = &year
	return s
}

// HasYear reports whether the release year is known.
func (s Song) HasYear() bool {
	return s.Year != nil
}

func isMissing(v float64) bool {
	return math.IsNaN(v)
}
