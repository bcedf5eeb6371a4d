// Package sqltable reads the song dataset from a SQL table. It is shared by
// the sqlite and postgres sources, which differ only in how they connect.
package sqltable

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

// DefaultTable is the table read when none is configured.
const DefaultTable = "songs"

// featureColumns lists the audio feature columns in SELECT order.
var featureColumns = [6]string{"danceability", "energy", "valence", "tempo", "duration_ms", "loudness"}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query returns the SELECT used to read table. Release dates are cast to
// text so every driver hands back the raw value for permissive parsing.
func Query(table string) (string, error) {
	if !identifier.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return `
		SELECT
			track_id, track_name, track_artist, track_popularity, track_album_name,
			CAST(track_album_release_date AS TEXT),
			playlist_genre, playlist_subgenre,
			danceability, energy, valence, tempo, duration_ms, loudness
		FROM ` + table, nil
}

// Load scans every row of table into a dataset labelled source. Failures
// are returned as *domain.DataSourceError.
func Load(ctx context.Context, db *sql.DB, source, table string) (*domain.Dataset, error) {
	query, err := Query(table)
	if err != nil {
		return nil, domain.NewDataSourceError(source, "query", err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewDataSourceError(source, "query", fmt.Errorf("failed to query %s: %w", table, err))
	}
	defer rows.Close()

	var songs []domain.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, domain.NewDataSourceError(source, "scan", fmt.Errorf("row %d: %w", len(songs)+1, err))
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDataSourceError(source, "scan", fmt.Errorf("failed to iterate %s: %w", table, err))
	}

	return domain.NewDataset(source, songs), nil
}

func scanSong(rows *sql.Rows) (domain.Song, error) {
	var (
		s           domain.Song
		trackID     sql.NullString
		album       sql.NullString
		releaseDate sql.NullString
		popularity  sql.NullFloat64
		features    [6]sql.NullFloat64
	)
	if err := rows.Scan(
		&trackID,
		&s.Name,
		&s.Artist,
		&popularity,
		&album,
		&releaseDate,
		&s.Genre,
		&s.Subgenre,
		&features[0],
		&features[1],
		&features[2],
		&features[3],
		&features[4],
		&features[5],
	); err != nil {
		return domain.Song{}, fmt.Errorf("failed to scan song: %w", err)
	}

	if !popularity.Valid {
		return domain.Song{}, fmt.Errorf("track_popularity is null")
	}
	pop, err := domain.PopularityOf(popularity.Float64)
	if err != nil {
		return domain.Song{}, fmt.Errorf("track_popularity: %w", err)
	}
	s.Popularity = pop
	s.TrackID = trackID.String
	s.Album = album.String

	dst := []*float64{&s.Danceability, &s.Energy, &s.Valence, &s.Tempo, &s.DurationMs, &s.Loudness}
	for i, f := range features {
		v := orNaN(f)
		if math.IsInf(v, 0) {
			return domain.Song{}, fmt.Errorf("%s %v is not a finite number", featureColumns[i], v)
		}
		*dst[i] = v
	}

	return s.WithReleaseDate(releaseDate.String), nil
}

func orNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
