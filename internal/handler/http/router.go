package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/ScentGo/internal/auth"
	"github.com/utafrali/ScentGo/internal/favorite"
	"github.com/utafrali/ScentGo/internal/profile"
	"github.com/utafrali/ScentGo/internal/review"
	"github.com/utafrali/ScentGo/internal/stats"
	"github.com/utafrali/ScentGo/pkg/health"
	"github.com/utafrali/ScentGo/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "scentgo"

// Deps groups everything the router serves.
type Deps struct {
	Stats      *stats.Aggregator
	Favorites  *favorite.Store
	Reviews    *review.Service
	Profile    *profile.Service
	Auth       *auth.Service
	JWTManager *auth.JWTManager
	Health     *health.Handler
	Metrics    *middleware.HTTPMetrics
	// MetricsHandler serves /metrics. Nil leaves the route unmounted.
	MetricsHandler http.Handler
	CORS           middleware.CORSConfig
	Logger         *slog.Logger

	// AuthRateLimitRPS limits sign-up and sign-in per client IP; 0 disables.
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// NewRouter creates a chi router with all ScentGo routes registered.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(d.CORS))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogging(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	// Token validator that bridges to our JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := d.JWTManager.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Username: claims.Username,
		}, nil
	}

	authHandler := NewAuthHandler(d.Auth, d.Logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.AuthRateLimitRPS, d.AuthRateLimitBurst, d.Logger))

		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)

		r.With(middleware.Auth(tokenValidator), middleware.UserLogger(d.Logger)).Get("/me", authHandler.Me)
	})

	perfumeHandler := NewPerfumeHandler(d.Stats, d.Logger)
	reviewHandler := NewReviewHandler(d.Reviews, d.Logger)
	r.Route("/api/v1/perfumes", func(r chi.Router) {
		r.Get("/", perfumeHandler.List)
		r.Get("/{id}", perfumeHandler.Get)
		r.Get("/{id}/reviews", reviewHandler.List)
		r.Post("/{id}/reviews", reviewHandler.Submit)
	})

	favoriteHandler := NewFavoriteHandler(d.Favorites, d.Stats, d.Logger)
	r.Route("/api/v1/favorites", func(r chi.Router) {
		r.Get("/", favoriteHandler.List)
		r.Put("/{id}", favoriteHandler.Toggle)
	})

	// Device-owner endpoints; a session token is optional.
	profileHandler := NewProfileHandler(d.Profile, d.Logger)
	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(tokenValidator))
		r.Use(middleware.UserLogger(d.Logger))

		r.Get("/reviews", reviewHandler.Mine)
		r.Get("/profile", profileHandler.Get)
	})

	return r
}
