package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/storepulse/api/internal/application/auth"
	"github.com/storepulse/api/internal/config"
	jwtinfra "github.com/storepulse/api/internal/infrastructure/jwt"
	"github.com/storepulse/api/internal/transport/http/handler"
	appmiddleware "github.com/storepulse/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. Constructed once
// at process start and injected; nothing here is looked up globally.
type Deps struct {
	OtpRepo     auth.OtpRepository
	UserRepo    auth.UserRepository
	Mailer      auth.Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.Deps{
		OtpRepo:  deps.OtpRepo,
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
		Tokens:   deps.JWTProvider,
		Options: auth.Options{
			OtpLength:       cfg.OTPLength,
			OtpExpiry:       time.Duration(cfg.OTPExpiryMinutes) * time.Minute,
			RateLimitCount:  cfg.OTPRateLimitCount,
			RateLimitWindow: time.Duration(cfg.OTPRateLimitWindowMinutes) * time.Minute,
		},
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(deps.UserRepo)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/request-otp", authH.RequestOtp)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOtp)
		r.Post("/auth/refresh", authH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/users/me", userH.Me)
		})
	})

	return r
}
