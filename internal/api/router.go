package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/reelinsight/internal/api/middleware"
	"github.com/kiranshivaraju/reelinsight/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and
	// X-Real-IP. Leave it off unless a proxy in front overwrites them, since
	// the rate limiter keys anonymous clients on RemoteAddr.
	TrustProxyHeaders bool

	HealthHandler    http.HandlerFunc
	SubmitHandler    http.HandlerFunc
	GetResultHandler http.HandlerFunc
	StatusHandler    http.HandlerFunc

	IndexPage   http.HandlerFunc
	SubmitForm  http.HandlerFunc
	ResultsPage http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/health", orNotImplemented(deps.HealthHandler))

	// JSON API
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)

		r.Get("/api/process-reel", orNotImplemented(deps.GetResultHandler))
		r.Get("/api/process-reel/status", orNotImplemented(deps.StatusHandler))

		r.With(deps.RateLimit.Limit).Post("/api/process-reel", orNotImplemented(deps.SubmitHandler))
	})

	// Web pages
	r.Get("/", orNotImplemented(deps.IndexPage))
	r.Get("/results", orNotImplemented(deps.ResultsPage))
	r.With(deps.RateLimit.Limit).Post("/submit", orNotImplemented(deps.SubmitForm))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not yet implemented")
	}
}
