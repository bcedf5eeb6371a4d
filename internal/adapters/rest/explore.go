package rest

import (
	"net/http"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
	"github.com/ewilliams-labs/songscope/internal/core/services"
)

type defaultsResponse struct {
	Criteria domain.Criteria     `json:"criteria"`
	X        domain.NumericField `json:"x"`
	Y        domain.NumericField `json:"y"`
	TopN     int                 `json:"top_n"`
}

type topResponse struct {
	Rows    []domain.TopRow `json:"rows"`
	Empty   bool            `json:"empty"`
	Message string          `json:"message,omitempty"`
}

// GetOptions handles GET /options. Subgenres and artists follow the genre
// parameter.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options(r.Context(), listParam(r.URL.Query(), "genre"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, opts)
}

// GetDefaults handles GET /defaults.
func (h *Handler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Defaults(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, defaultsResponse{
		Criteria: c,
		X:        domain.DefaultX,
		Y:        domain.DefaultY,
		TopN:     h.svc.TopN(),
	})
}

// GetFields handles GET /fields.
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, services.Fields())
}

// SearchArtists handles GET /artists?q=...&genre=...&limit=...
func (h *Handler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := limitParam(q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	matches, err := h.svc.SearchArtists(r.Context(), listParam(q, "genre"), q.Get("q"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, matches)
}

// GetDashboard handles GET /dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	d, err := h.svc.Dashboard(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

// GetSummary handles GET /summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s, err := h.svc.Summary(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

// GetTop handles GET /top. limit overrides the configured table size.
func (h *Handler) GetTop(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limit, err := limitParam(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rows, err := h.svc.Top(r.Context(), c, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := topResponse{Rows: rows}
	if len(rows) == 0 {
		resp.Empty = true
		resp.Message = services.MsgNoSongs
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetPlot handles GET /plot?x=...&y=... Axes default to danceability and
// energy.
func (h *Handler) GetPlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, err := fieldParam(q, "x", domain.DefaultX)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	y, err := fieldParam(q, "y", domain.DefaultY)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c, err := h.criteria(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	p, err := h.svc.Plot(r.Context(), c, x, y)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}
