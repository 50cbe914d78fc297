package handler

import (
	"context"
	"net/http"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/logger"
	"opengalaxy/security"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	GithubIDCtxKey contextKey = "githubID"
)

// Authenticator rejects requests without a verified token and exposes the
// user_id and github_id claims on the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			RespondWithError(w, apperr.Unauthorized("Authorization token required"))
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			RespondWithError(w, apperr.Unauthorized("Invalid token claims: %s", err.Error()))
			return
		}
		githubID, err := security.GetGithubIDFromClaims(claims)
		if err != nil {
			RespondWithError(w, apperr.Unauthorized("Invalid token claims: %s", err.Error()))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, GithubIDCtxKey, githubID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

func GetGithubIDFromContext(ctx context.Context) (string, bool) {
	githubID, ok := ctx.Value(GithubIDCtxKey).(string)
	return githubID, ok
}

// RequestLogger logs one entry per request, keyed by the chi request id.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := zapcore.InfoLevel
			if ww.Status() >= http.StatusInternalServerError {
				level = zapcore.ErrorLevel
			}
			log.Log(level, middleware.GetReqID(r.Context()), "HTTP request served", map[string]any{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			}, "HTTP", nil)
		})
	}
}

func userID(r *http.Request) string {
	id, _ := GetUserIDFromContext(r.Context())
	return id
}
