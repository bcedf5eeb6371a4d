package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

func TestCatalog_LoadMemoizesByPath(t *testing.T) {
	src := &mockSource{ds: testDataset()}
	c := NewCatalog(src, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]*domain.Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := c.Load(context.Background(), "songs.csv")
			if err != nil {
				t.Errorf("load: %v", err)
				return
			}
			results[i] = ds
		}()
	}
	wg.Wait()

	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected one read, got %d", got)
	}
	for i, ds := range results {
		if ds != results[0] {
			t.Fatalf("caller %d got a different snapshot", i)
		}
	}

	if _, err := c.Load(context.Background(), "other.csv"); err != nil {
		t.Fatalf("load other: %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected a second read for a new path, got %d", got)
	}
}

func TestCatalog_FailedLoadIsRetried(t *testing.T) {
	src := &mockSource{err: domain.NewDataSourceError("songs.csv", "open", errors.New("missing"))}
	c := NewCatalog(src, zerolog.Nop())

	_, err := c.Load(context.Background(), "songs.csv")
	if !errors.Is(err, domain.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}

	src.setErr(nil)
	src.ds = testDataset()
	if _, err := c.Load(context.Background(), "songs.csv"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected two reads, got %d", got)
	}
}

func TestCatalog_PanickingLoadIsRetried(t *testing.T) {
	src := &mockSource{ds: testDataset()}
	src.panicOnce.Store(true)
	c := NewCatalog(src, zerolog.Nop())

	ds, err := c.Load(context.Background(), "songs.csv")
	if !errors.Is(err, domain.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got ds=%v err=%v", ds, err)
	}
	var dsErr *domain.DataSourceError
	if !errors.As(err, &dsErr) || dsErr.Op != "load" {
		t.Fatalf("expected load failure, got %v", err)
	}

	ds, err = c.Load(context.Background(), "songs.csv")
	if err != nil || ds == nil {
		t.Fatalf("expected retry to succeed, got ds=%v err=%v", ds, err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected two reads, got %d", got)
	}
}

func TestExplorer_RecoversAfterPanickingLoad(t *testing.T) {
	src := &mockSource{ds: testDataset()}
	src.panicOnce.Store(true)
	e := newTestExplorer(src, 0)

	if _, err := e.Dashboard(context.Background(), domain.DefaultCriteria(testDataset())); !errors.Is(err, domain.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
	d, err := e.Dashboard(context.Background(), domain.DefaultCriteria(testDataset()))
	if err != nil {
		t.Fatalf("dashboard after retry: %v", err)
	}
	if d.Summary.Count != 3 {
		t.Fatalf("expected 3 dated songs, got %d", d.Summary.Count)
	}
}

func TestExplorer_Dashboard(t *testing.T) {
	tests := []struct {
		name        string
		criteria    func(ds *domain.Dataset) domain.Criteria
		wantCount   int
		wantTop     []int
		wantEmpty   bool
		wantErr     error
		wantMessage string
	}{
		{
			name:      "defaults rank everything with a year",
			criteria:  domain.DefaultCriteria,
			wantCount: 3,
			wantTop:   []int{90, 50, 10},
		},
		{
			name: "artist filter",
			criteria: func(ds *domain.Dataset) domain.Criteria {
				c := domain.DefaultCriteria(ds)
				c.Artist = "B"
				return c
			},
			wantCount: 1,
			wantTop:   []int{90},
		},
		{
			name: "no match is an informational empty state",
			criteria: func(ds *domain.Dataset) domain.Criteria {
				c := domain.DefaultCriteria(ds)
				c.Popularity = domain.IntRange{Min: 95, Max: 100}
				return c
			},
			wantCount:   0,
			wantTop:     []int{},
			wantEmpty:   true,
			wantMessage: MsgNoSongs,
		},
		{
			name: "inverted range is rejected",
			criteria: func(ds *domain.Dataset) domain.Criteria {
				c := domain.DefaultCriteria(ds)
				c.Years = domain.IntRange{Min: 2020, Max: 1990}
				return c
			},
			wantErr: domain.ErrInvalidCriteria,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestExplorer(&mockSource{ds: testDataset()}, 2)
			ds, err := e.Dataset(context.Background())
			if err != nil {
				t.Fatalf("dataset: %v", err)
			}

			got, err := e.Dashboard(context.Background(), tc.criteria(ds))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Summary.Count != tc.wantCount {
				t.Fatalf("count: got %d, want %d", got.Summary.Count, tc.wantCount)
			}
			if got.Empty != tc.wantEmpty || got.Message != tc.wantMessage {
				t.Fatalf("empty state: got (%v, %q), want (%v, %q)", got.Empty, got.Message, tc.wantEmpty, tc.wantMessage)
			}

			// Top is capped at the explorer's configured size.
			want := tc.wantTop[:min(2, len(tc.wantTop))]
			pops := []int{}
			for _, r := range got.Top {
				pops = append(pops, r.Popularity)
			}
			if !reflect.DeepEqual(pops, want) {
				t.Fatalf("top popularities: got %v, want %v", pops, want)
			}
		})
	}
}

func TestExplorer_DataSourceFailure(t *testing.T) {
	e := newTestExplorer(&mockSource{err: domain.NewDataSourceError("songs.csv", "open", errors.New("no such file"))}, 0)

	_, err := e.Dashboard(context.Background(), domain.Criteria{Popularity: domain.IntRange{Max: 100}})
	if !errors.Is(err, domain.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
	var dsErr *domain.DataSourceError
	if !errors.As(err, &dsErr) || dsErr.Path != "songs.csv" {
		t.Fatalf("expected DataSourceError for songs.csv, got %v", err)
	}
}

func TestExplorer_Top(t *testing.T) {
	e := newTestExplorer(&mockSource{ds: testDataset()}, 1)
	ds, _ := e.Dataset(context.Background())
	c := domain.DefaultCriteria(ds)

	rows, err := e.Top(context.Background(), c, 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected configured size 1, got %d", len(rows))
	}

	rows, err = e.Top(context.Background(), c, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(rows) != 2 || rows[0].Popularity != 90 || rows[1].Popularity != 50 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestExplorer_Plot(t *testing.T) {
	e := newTestExplorer(&mockSource{ds: testDataset()}, 0)
	ds, _ := e.Dataset(context.Background())
	c := domain.DefaultCriteria(ds)

	p, err := e.Plot(context.Background(), c, domain.FieldPopularity, domain.FieldEnergy)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if p.XTitle != "Track_popularity" || p.YTitle != "Energy" {
		t.Fatalf("titles: %q / %q", p.XTitle, p.YTitle)
	}
	if len(p.Points) != 3 || p.Empty {
		t.Fatalf("expected 3 points, got %d (empty=%v)", len(p.Points), p.Empty)
	}

	c.Artist = "nobody"
	p, err = e.Plot(context.Background(), c, domain.FieldPopularity, domain.FieldEnergy)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if !p.Empty || p.Message != MsgNoPlot || p.Points == nil {
		t.Fatalf("expected empty plot state, got %+v", p)
	}

	if _, err := e.Plot(context.Background(), c, domain.NumericField(99), domain.FieldEnergy); !errors.Is(err, domain.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestExplorer_Options(t *testing.T) {
	e := newTestExplorer(&mockSource{ds: testDataset()}, 0)

	all, err := e.Options(context.Background(), nil)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if !reflect.DeepEqual(all.Genres, []string{"pop", "rock"}) {
		t.Fatalf("genres: %v", all.Genres)
	}
	if !reflect.DeepEqual(all.Artists, []string{domain.AllArtists, "A", "B", "C", "D"}) {
		t.Fatalf("artists: %v", all.Artists)
	}
	if all.Years != (domain.IntRange{Min: 1990, Max: 2020}) {
		t.Fatalf("years: %+v", all.Years)
	}
	if len(all.Fields) != 7 || all.DefaultX != domain.FieldDanceability || all.DefaultY != domain.FieldEnergy {
		t.Fatalf("fields: %+v", all)
	}
	if !reflect.DeepEqual(all.AmbiguousSubgenres, []string{"crossover"}) {
		t.Fatalf("ambiguous subgenres: %v", all.AmbiguousSubgenres)
	}

	rock, err := e.Options(context.Background(), []string{"rock"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if !reflect.DeepEqual(rock.Subgenres, []string{"crossover", "hard rock"}) {
		t.Fatalf("rock subgenres: %v", rock.Subgenres)
	}
	if !reflect.DeepEqual(rock.Artists, []string{domain.AllArtists, "C", "D"}) {
		t.Fatalf("rock artists: %v", rock.Artists)
	}
}

func TestExplorer_SearchArtists(t *testing.T) {
	ds := domain.NewDataset("artists", []domain.Song{
		{Name: "1", Artist: "Metallica", Genre: "rock"},
		{Name: "2", Artist: "Megadeth", Genre: "rock"},
		{Name: "3", Artist: "Madonna", Genre: "pop"},
		{Name: "4", Artist: "Metallic Taste", Genre: "rock"},
	})
	e := newTestExplorer(&mockSource{ds: ds}, 0)

	got, err := e.SearchArtists(context.Background(), nil, "metal", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected prefix matches, got %+v", got)
	}
	for _, m := range got[:2] {
		if m.Name != "Metallic Taste" && m.Name != "Metallica" {
			t.Fatalf("prefix matches should rank first, got %+v", got)
		}
	}
	for _, m := range got {
		if m.Name == "Madonna" {
			t.Fatalf("dissimilar artist returned: %+v", got)
		}
	}

	pop, err := e.SearchArtists(context.Background(), []string{"pop"}, "metal", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, m := range pop {
		if m.Name == "Metallica" {
			t.Fatalf("artist outside selected genres returned: %+v", pop)
		}
	}

	blank, err := e.SearchArtists(context.Background(), nil, "  ", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(blank) != 2 || blank[0].Name != "Madonna" || blank[1].Name != "Megadeth" {
		t.Fatalf("blank query should list alphabetically, got %+v", blank)
	}
}

// --- Mocks ---

type mockSource struct {
	mu    sync.Mutex
	ds    *domain.Dataset
	err   error
	calls atomic.Int32
	// panicOnce makes the next Load panic.
	panicOnce atomic.Bool
}

func (m *mockSource) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	m.calls.Add(1)
	if m.panicOnce.CompareAndSwap(true, false) {
		panic("driver exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.ds, nil
}

func (m *mockSource) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func testDataset() *domain.Dataset {
	mk := func(name, artist, genre, sub string, pop int, date string) domain.Song {
		return domain.Song{
			Name: name, Artist: artist, Genre: genre, Subgenre: sub, Popularity: pop,
			Danceability: 0.5, Energy: 0.6, Valence: 0.4, Tempo: 110, DurationMs: 210000, Loudness: -7,
		}.WithReleaseDate(date)
	}
	return domain.NewDataset("test", []domain.Song{
		mk("one", "A", "pop", "dance pop", 10, "1990-01-01"),
		mk("two", "B", "pop", "crossover", 90, "2005"),
		mk("three", "C", "rock", "crossover", 50, "2020-05"),
		mk("four", "D", "rock", "hard rock", 70, "n/a"),
	})
}

func newTestExplorer(src *mockSource, topN int) *Explorer {
	return NewExplorer(NewCatalog(src, zerolog.Nop()), "songs.csv", topN, zerolog.Nop())
}
