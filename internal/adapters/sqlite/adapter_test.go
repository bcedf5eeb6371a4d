package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

const schema = `
	CREATE TABLE songs (
		track_id TEXT,
		track_name TEXT NOT NULL,
		track_artist TEXT NOT NULL,
		track_popularity INTEGER NOT NULL,
		track_album_name TEXT,
		track_album_release_date TEXT,
		playlist_genre TEXT NOT NULL,
		playlist_subgenre TEXT NOT NULL,
		danceability REAL,
		energy REAL,
		valence REAL,
		tempo REAL,
		duration_ms REAL,
		loudness REAL
	);
`

func seed(t *testing.T, path string, rows ...[]any) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO songs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r...); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

func TestAdapter_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.db")
	seed(t, path,
		[]any{"t1", "One", "Artist A", 66, "Album", "2019-06-14", "pop", "dance pop", 0.7, 0.8, 0.5, 120.0, 200000.0, -4.0},
		[]any{"t2", "Two", "Artist B", 40, nil, "2012", "rock", "hard rock", nil, 0.6, 0.4, 98.0, 180000.0, -6.5},
		[]any{nil, "Three", "Artist C", 10, "Album", "sometime", "edm", "big room", 0.9, 0.9, 0.9, 128.0, 190000.0, -3.0},
	)

	ds, err := NewAdapter("").Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 songs, got %d", ds.Len())
	}

	first := ds.At(0)
	if first.Name != "One" || first.Popularity != 66 || first.Year == nil || *first.Year != 2019 {
		t.Fatalf("unexpected first song %+v", first)
	}
	if !math.IsNaN(ds.At(1).Danceability) {
		t.Fatalf("null feature should be NaN, got %v", ds.At(1).Danceability)
	}
	if ds.At(2).Year != nil || ds.At(2).TrackID != "" {
		t.Fatalf("unexpected third song %+v", ds.At(2))
	}
	if got := ds.MissingYears(); got != 1 {
		t.Fatalf("expected 1 row without a year, got %d", got)
	}
}

func TestAdapter_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.db")
	seed(t, empty)

	tests := []struct {
		name   string
		path   string
		table  string
		wantOp string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.db"), wantOp: "open"},
		{name: "missing table", path: empty, table: "tracks", wantOp: "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapter(tt.table).Load(context.Background(), tt.path)
			if !errors.Is(err, domain.ErrDataSource) {
				t.Fatalf("expected ErrDataSource, got %v", err)
			}
			var dsErr *domain.DataSourceError
			if !errors.As(err, &dsErr) || dsErr.Op != tt.wantOp {
				t.Fatalf("expected op %q, got %v", tt.wantOp, err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "missing.db")); !os.IsNotExist(err) {
		t.Fatalf("read-only open must not create the file")
	}
}
