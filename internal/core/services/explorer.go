package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

const (
	// MsgNoSongs accompanies an empty table.
	MsgNoSongs = "No songs match the selected filters."
	// MsgNoPlot accompanies an empty plot.
	MsgNoPlot = "Adjust the filters to see charts."

	artistMatchThreshold = 0.7
	defaultArtistLimit   = 10
)

// FieldOption describes a selectable plot axis.
type FieldOption struct {
	Field domain.NumericField `json:"field"`
	Title string              `json:"title"`
}

// Options are the values the sidebar controls can offer for a genre
// selection.
type Options struct {
	Genres             []string            `json:"genres"`
	Subgenres          []string            `json:"subgenres"`
	Artists            []string            `json:"artists"`
	Years              domain.IntRange     `json:"years"`
	Popularity         domain.IntRange     `json:"popularity"`
	Fields             []FieldOption       `json:"fields"`
	DefaultX           domain.NumericField `json:"default_x"`
	DefaultY           domain.NumericField `json:"default_y"`
	AmbiguousSubgenres []string            `json:"ambiguous_subgenres,omitempty"`
}

// Dashboard is the metrics and ranked table for one criteria set.
type Dashboard struct {
	Criteria domain.Criteria `json:"criteria"`
	Summary  domain.Summary  `json:"summary"`
	Top      []domain.TopRow `json:"top"`
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
}

// Plot is a scatter projection of the filtered songs.
type Plot struct {
	X       domain.NumericField `json:"x"`
	Y       domain.NumericField `json:"y"`
	XTitle  string              `json:"x_title"`
	YTitle  string              `json:"y_title"`
	Points  []domain.PlotPoint  `json:"points"`
	Empty   bool                `json:"empty"`
	Message string              `json:"message,omitempty"`
}

// ArtistMatch is one typeahead suggestion.
type ArtistMatch struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Explorer answers dashboard queries against one shared dataset.
type Explorer struct {
	catalog *Catalog
	path    string
	topN    int
	log     zerolog.Logger
}

// NewExplorer constructs an Explorer. topN below one falls back to
// domain.DefaultTopN.
func NewExplorer(catalog *Catalog, path string, topN int, log zerolog.Logger) *Explorer {
	if topN < 1 {
		topN = domain.DefaultTopN
	}
	return &Explorer{
		catalog: catalog,
		path:    path,
		topN:    topN,
		log:     log,
	}
}

// TopN is the configured table size.
func (e *Explorer) TopN() int {
	return e.topN
}

// Dataset returns the shared snapshot, loading it on first use.
func (e *Explorer) Dataset(ctx context.Context) (*domain.Dataset, error) {
	ds, err := e.catalog.Load(ctx, e.path)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load dataset: %w", err)
	}
	return ds, nil
}

// Defaults returns the initial criteria for the dataset.
func (e *Explorer) Defaults(ctx context.Context) (domain.Criteria, error) {
	ds, err := e.Dataset(ctx)
	if err != nil {
		return domain.Criteria{}, err
	}
	return domain.DefaultCriteria(ds), nil
}

// Options lists the values the controls can offer. Subgenres and artists
// depend on genres; an empty genre list offers everything.
func (e *Explorer) Options(ctx context.Context, genres []string) (Options, error) {
	ds, err := e.Dataset(ctx)
	if err != nil {
		return Options{}, err
	}

	years, _ := ds.YearBounds()
	artists := append([]string{domain.AllArtists}, domain.AvailableArtists(ds, genres)...)

	var ambiguous []string
	for sub, gs := range domain.SubgenreGenres(ds) {
		if len(gs) > 1 {
			ambiguous = append(ambiguous, sub)
		}
	}
	slices.Sort(ambiguous)

	return Options{
		Genres:             domain.AvailableGenres(ds),
		Subgenres:          domain.AvailableSubgenres(ds, genres),
		Artists:            artists,
		Years:              years,
		Popularity:         domain.IntRange{Min: domain.MinPopularity, Max: domain.MaxPopularity},
		Fields:             Fields(),
		DefaultX:           domain.DefaultX,
		DefaultY:           domain.DefaultY,
		AmbiguousSubgenres: ambiguous,
	}, nil
}

// Fields lists the permissible plot axes.
func Fields() []FieldOption {
	fields := domain.NumericFields()
	out := make([]FieldOption, len(fields))
	for i, f := range fields {
		out[i] = FieldOption{Field: f, Title: f.Title()}
	}
	return out
}

// View validates c and returns the matching songs.
func (e *Explorer) View(ctx context.Context, c domain.Criteria) (domain.View, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	ds, err := e.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Filter(c), nil
}

// Summary returns only the headline metrics for c.
func (e *Explorer) Summary(ctx context.Context, c domain.Criteria) (domain.Summary, error) {
	view, err := e.View(ctx, c)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(view), nil
}

// Top returns the n most popular songs for c. n below one uses the
// configured size.
func (e *Explorer) Top(ctx context.Context, c domain.Criteria, n int) ([]domain.TopRow, error) {
	if n < 1 {
		n = e.topN
	}
	view, err := e.View(ctx, c)
	if err != nil {
		return nil, err
	}
	return domain.TopByPopularity(view, n), nil
}

// Dashboard filters once and derives the metrics and ranked table.
func (e *Explorer) Dashboard(ctx context.Context, c domain.Criteria) (Dashboard, error) {
	view, err := e.View(ctx, c)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Criteria: c,
		Summary:  domain.Summarize(view),
		Top:      domain.TopByPopularity(view, e.topN),
	}
	if d.Summary.Count == 0 {
		d.Empty = true
		d.Message = MsgNoSongs
	}

	e.log.Debug().
		Int("rows", d.Summary.Count).
		Strs("genres", c.Genres).
		Str("artist", c.Artist).
		Msg("dashboard computed")
	return d, nil
}

// Plot projects the songs matching c onto the x and y fields. Invalid
// fields are rejected before the dataset is touched.
func (e *Explorer) Plot(ctx context.Context, c domain.Criteria, x, y domain.NumericField) (Plot, error) {
	if !x.Valid() || !y.Valid() {
		return Plot{}, fmt.Errorf("service: %w", domain.ErrInvalidField)
	}
	view, err := e.View(ctx, c)
	if err != nil {
		return Plot{}, err
	}

	seq, err := domain.Project(view, x, y)
	if err != nil {
		return Plot{}, fmt.Errorf("service: %w", err)
	}

	p := Plot{
		X:      x,
		Y:      y,
		XTitle: x.Title(),
		YTitle: y.Title(),
		Points: slices.Collect(seq),
	}
	if p.Points == nil {
		p.Points = []domain.PlotPoint{}
	}
	if len(view) == 0 {
		p.Empty = true
		p.Message = MsgNoPlot
	}
	return p, nil
}

// SearchArtists suggests artists for the artist control. Candidates are the
// artists available for genres. Names are compared after normalization;
// prefix matches rank first, then Jaro-Winkler similarity. A blank query
// lists artists alphabetically.
func (e *Explorer) SearchArtists(ctx context.Context, genres []string, query string, limit int) ([]ArtistMatch, error) {
	if limit < 1 {
		limit = defaultArtistLimit
	}
	ds, err := e.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	candidates := domain.AvailableArtists(ds, genres)
	query = normalizeArtist(query)

	matches := []ArtistMatch{}
	if query == "" {
		for _, name := range candidates[:min(limit, len(candidates))] {
			matches = append(matches, ArtistMatch{Name: name, Score: 1})
		}
		return matches, nil
	}

	jw := metrics.NewJaroWinkler()
	prefixed := map[string]bool{}
	for _, name := range candidates {
		norm := normalizeArtist(name)
		score := strutil.Similarity(query, norm, jw)
		isPrefix := strings.HasPrefix(norm, query)
		if !isPrefix && score < artistMatchThreshold {
			continue
		}
		prefixed[name] = isPrefix
		matches = append(matches, ArtistMatch{Name: name, Score: score})
	}

	slices.SortStableFunc(matches, func(a, b ArtistMatch) int {
		if prefixed[a.Name] != prefixed[b.Name] {
			if prefixed[a.Name] {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return matches[:min(limit, len(matches))], nil
}
