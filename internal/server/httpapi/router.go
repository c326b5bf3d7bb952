package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Per-IP budget for login and reset requests.
const (
	attemptLimit  = 5
	attemptWindow = time.Minute
)

type RouterOptions struct {
	AllowedOrigins []string
	// Ready backs /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
	// Gatherer backs /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
}

// Router builds the HTTP router with health, readiness, metrics and the
// account API.
func Router(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(req.Context()); err != nil {
				h.log.Warn(req.Context(), "not ready", "error", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method("GET", "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", h.register)
		r.With(attemptLimiter()).Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Route("/password", func(r chi.Router) {
			r.With(attemptLimiter()).Post("/reset-request", h.requestReset)
			r.Post("/reset/check", h.checkResetToken)
			r.Post("/reset", h.resetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.updateProfile)
			r.Get("/profile/details", h.getDetails)
			r.Post("/profile/social", h.addSocialProfile)
			r.Post("/profile/education", h.addEducation)
			r.Post("/profile/work", h.addWorkExperience)
			r.Post("/profile/skills", h.addSkill)
			r.Delete("/account", h.deleteAccount)
		})
	})

	return otelhttp.NewHandler(r, "gophaccount",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
		}),
	)
}

// attemptLimiter returns a fresh per-IP limiter, so each route gets its own
// budget.
func attemptLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(attemptLimit, attemptWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, msgTooMany)
		}),
	)
}
