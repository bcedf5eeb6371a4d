package rest

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songscope/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc     *services.Explorer // Dependency on the Core Service
	router  *http.ServeMux     // Standard library router
	log     zerolog.Logger
	limiter *clientLimiter
	chain   http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the base request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithRateLimit limits each client to rps requests per second with the
// given burst. rps of zero or less disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *Handler) {
		if rps > 0 {
			h.limiter = newClientLimiter(rps, burst)
		}
	}
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Explorer, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	// Register Routes
	h.routes()

	// Outermost first: every request gets an id before it is logged,
	// recovered or limited.
	var next http.Handler = h.router
	if h.limiter != nil {
		next = h.rateLimit(next)
	}
	next = h.recoverPanics(next)
	h.chain = h.requestLogging(next)

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Controls
	h.router.HandleFunc("GET /options", h.GetOptions)
	h.router.HandleFunc("GET /defaults", h.GetDefaults)
	h.router.HandleFunc("GET /fields", h.GetFields)
	h.router.HandleFunc("GET /artists", h.SearchArtists)
	// Views
	h.router.HandleFunc("GET /dashboard", h.GetDashboard)
	h.router.HandleFunc("GET /summary", h.GetSummary)
	h.router.HandleFunc("GET /top", h.GetTop)
	h.router.HandleFunc("GET /plot", h.GetPlot)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
