package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

// listParam collects a repeatable, comma-separated parameter. Blank entries
// are dropped.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidCriteria, key, raw)
	}
	return v, nil
}

func fieldParam(q url.Values, key string, def domain.NumericField) (domain.NumericField, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	f, err := domain.ParseNumericField(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// criteria builds filter criteria from the query string. Ranges that are
// not given fall back to defaults; missing genre and subgenre lists mean
// no restriction.
func (h *Handler) criteria(r *http.Request) (domain.Criteria, error) {
	defaults, err := h.svc.Defaults(r.Context())
	if err != nil {
		return domain.Criteria{}, err
	}

	q := r.URL.Query()
	c := domain.Criteria{
		Genres:    listParam(q, "genre"),
		Subgenres: listParam(q, "subgenre"),
		Artist:    q.Get("artist"),
	}
	// Artist names are matched verbatim; only the sentinel check trims.
	if domain.IsAllArtists(c.Artist) {
		c.Artist = domain.AllArtists
	}

	bounds := []struct {
		key string
		def int
		dst *int
	}{
		{"year_min", defaults.Years.Min, &c.Years.Min},
		{"year_max", defaults.Years.Max, &c.Years.Max},
		{"pop_min", defaults.Popularity.Min, &c.Popularity.Min},
		{"pop_max", defaults.Popularity.Max, &c.Popularity.Max},
	}
	for _, b := range bounds {
		if *b.dst, err = intParam(q, b.key, b.def); err != nil {
			return domain.Criteria{}, err
		}
	}
	return c, nil
}

func limitParam(q url.Values) (int, error) {
	n, err := intParam(q, "limit", 0)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidCriteria)
	}
	return n, nil
}
