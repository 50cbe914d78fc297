package service

import (
	"context"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/cache"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/notify"
	"opengalaxy/render"
	"opengalaxy/repository"
	"opengalaxy/security"

	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"
)

// Deps is everything the services need from the outside world.
type Deps struct {
	Repos      repository.Repositories
	Cache      cache.Cache
	Dispatcher notify.Dispatcher
	PDF        render.PDFRenderer
	Tokens     *security.TokenIssuer
	OAuth      *oauth2.Config
	Logger     *logger.Logger
	BaseURL    string
	Location   *time.Location
}

type Services struct {
	Users        *UserService
	Auth         *AuthService
	Problems     *ProblemService
	Solutions    *SolutionService
	Certificates *CertificateService
	Leaderboard  *LeaderboardService
}

func NewServices(d Deps) *Services {
	if d.Location == nil {
		d.Location = time.UTC
	}
	board := NewLeaderboardService(d.Repos.Solutions, d.Repos.Users, d.Cache, d.Location, d.Logger)
	users := NewUserService(d.Repos.Users, board, d.Logger)
	certs := NewCertificateService(d.Repos.Certificates, d.Repos.Users, d.PDF, d.BaseURL, d.Location, d.Logger)
	return &Services{
		Users:        users,
		Auth:         NewAuthService(d.OAuth, users, d.Tokens, d.Dispatcher, d.Logger),
		Problems:     NewProblemService(d.Repos, board, d.Dispatcher, d.Logger),
		Solutions:    NewSolutionService(d.Repos, certs, board, d.Dispatcher, d.Logger),
		Certificates: certs,
		Leaderboard:  board,
	}
}

// logFailure records a failed operation with the error kind as errorType and
// hands the error back.
func logFailure(l *logger.Logger, traceID, method, message string, fields map[string]any, err error) error {
	f := map[string]any{"method": method, "errorType": errorType(err)}
	for k, v := range fields {
		f[k] = v
	}
	level := zapcore.ErrorLevel
	switch errorType(err) {
	case "NOT_FOUND", "VALIDATION_ERROR", "FORBIDDEN", "UNAUTHORIZED", "CONFLICT":
		level = zapcore.WarnLevel
	}
	l.Log(level, traceID, message, f, "SERVICE", err)
	return err
}

// errorType labels failures for logs. Unclassified errors come from storage.
func errorType(err error) string {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		return "DB_ERROR"
	}
	return string(kind)
}

func dispatch(ctx context.Context, d notify.Dispatcher, e notify.Event) {
	if d != nil {
		d.Dispatch(ctx, e)
	}
}

// userSummaries resolves ids to public summaries. Unknown ids map to an empty
// summary.
func userSummaries(ctx context.Context, users repository.UserRepository, ids []string) (map[string]model.UserSummary, error) {
	out := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].ID.Hex()] = model.ToUserSummary(&found[i])
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = model.ToUserSummary(nil)
		}
	}
	return out, nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
