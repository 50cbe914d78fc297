package handler

import (
	"net/http"
	"time"

	"opengalaxy/logger"
	"opengalaxy/security"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/cors"
)

type RouterConfig struct {
	CORSOrigins   []string
	FrontendURL   string
	SecureCookies bool
	TokenTTL      time.Duration
}

func NewRouter(svc *service.Services, tokens *security.TokenIssuer, cfg RouterConfig, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(jwtauth.Verifier(tokens.Auth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	})

	r.Route("/auth", func(r chi.Router) {
		NewAuthHandler(svc.Auth, cfg.FrontendURL, cfg.SecureCookies, cfg.TokenTTL).RegisterRoutes(r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			NewLeaderboardHandler(svc.Leaderboard).RegisterRoutes(r)
		})
		r.Route("/problems", func(r chi.Router) {
			NewProblemHandler(svc.Problems, svc.Solutions).RegisterRoutes(r)
		})
		r.Route("/solutions", func(r chi.Router) {
			NewSolutionHandler(svc.Solutions).RegisterRoutes(r)
		})
		r.Route("/users", func(r chi.Router) {
			NewUserHandler(svc.Users, svc.Problems, svc.Solutions).RegisterRoutes(r)
		})
		r.Route("/certificates", func(r chi.Router) {
			NewCertificateHandler(svc.Certificates, svc.Users).RegisterRoutes(r)
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
	}).Handler(r)
}

// toggle registers a toggle endpoint under both POST and PUT; older clients
// still send PUT.
func toggle(r chi.Router, pattern string, h http.HandlerFunc) {
	r.With(Authenticator).Post(pattern, h)
	r.With(Authenticator).Put(pattern, h)
}
