// Package csvfile loads the song dataset from a CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

const ctxCheckEvery = 1024

// Column names. Required columns must be present in the header; the rest
// are read when available.
const (
	colTrackID     = "track_id"
	colName        = "track_name"
	colArtist      = "track_artist"
	colPopularity  = "track_popularity"
	colAlbum       = "track_album_name"
	colReleaseDate = "track_album_release_date"
	colGenre       = "playlist_genre"
	colSubgenre    = "playlist_subgenre"
	colDance       = "danceability"
	colEnergy      = "energy"
	colValence     = "valence"
	colTempo       = "tempo"
	colDuration    = "duration_ms"
	colLoudness    = "loudness"
)

var requiredColumns = []string{
	colName, colArtist, colPopularity, colReleaseDate, colGenre, colSubgenre,
	colDance, colEnergy, colValence, colTempo, colDuration, colLoudness,
}

// Loader implements ports.DatasetSource for CSV files.
type Loader struct{}

// NewLoader returns a CSV dataset loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the whole file at path. Any I/O or format problem is returned
// as a *domain.DataSourceError; release dates that do not parse become nil.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewDataSourceError(path, "open", err)
	}
	defer f.Close()

	songs, err := Parse(ctx, f)
	if err != nil {
		return nil, domain.NewDataSourceError(path, "parse", err)
	}
	return domain.NewDataset(path, songs), nil
}

// Parse decodes CSV rows with a header line into songs.
func Parse(ctx context.Context, r io.Reader) ([]domain.Song, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var songs []domain.Song
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		s, err := cols.song(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		songs = append(songs, s)
	}

	return songs, nil
}

type columns map[string]int

func indexColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if !utf8.ValidString(h) {
			return nil, fmt.Errorf("header column %d is not valid UTF-8", i+1)
		}
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) text(record []string, name string) (string, error) {
	i, ok := c[name]
	if !ok {
		return "", nil
	}
	v := record[i]
	if !utf8.ValidString(v) {
		return "", fmt.Errorf("column %q is not valid UTF-8", name)
	}
	return v, nil
}

// number parses a float column. Blank and NaN cells are missing values;
// infinities are rejected.
func (c columns) number(record []string, name string) (float64, error) {
	raw, err := c.text(record, name)
	if err != nil {
		return 0, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("column %q: %q is out of range", name, raw)
		}
		return 0, fmt.Errorf("column %q: %q is not a number", name, raw)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("column %q: %q is not a finite number", name, raw)
	}
	return v, nil
}

func (c columns) song(record []string) (domain.Song, error) {
	var s domain.Song
	var err error

	texts := []struct {
		name string
		dst  *string
	}{
		{colTrackID, &s.TrackID},
		{colName, &s.Name},
		{colArtist, &s.Artist},
		{colAlbum, &s.Album},
		{colGenre, &s.Genre},
		{colSubgenre, &s.Subgenre},
	}
	for _, t := range texts {
		if *t.dst, err = c.text(record, t.name); err != nil {
			return domain.Song{}, err
		}
	}

	rawPop, err := c.text(record, colPopularity)
	if err != nil {
		return domain.Song{}, err
	}
	if s.Popularity, err = ParsePopularity(rawPop); err != nil {
		return domain.Song{}, fmt.Errorf("column %q: %w", colPopularity, err)
	}

	numbers := []struct {
		name string
		dst  *float64
	}{
		{colDance, &s.Danceability},
		{colEnergy, &s.Energy},
		{colValence, &s.Valence},
		{colTempo, &s.Tempo},
		{colDuration, &s.DurationMs},
		{colLoudness, &s.Loudness},
	}
	for _, n := range numbers {
		if *n.dst, err = c.number(record, n.name); err != nil {
			return domain.Song{}, err
		}
	}

	rawDate, err := c.text(record, colReleaseDate)
	if err != nil {
		return domain.Song{}, err
	}
	return s.WithReleaseDate(rawDate), nil
}

// ParsePopularity accepts whole numbers on the popularity scale written as
// "57" or "57.0".
func ParsePopularity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return domain.PopularityOf(f)
}
