package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"opengalaxy/cache"
	"opengalaxy/leaderboard"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/repository"

	"github.com/google/uuid"
	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
)

const (
	// Longer than leaderboardSchedule; writes that change standings
	// invalidate sooner.
	leaderboardCacheTTL  = 35 * time.Minute
	leaderboardSchedule  = "@every 30m"
	leaderboardKeyPrefix = "leaderboard:"
)

// LeaderboardService serves rankings, caching the full ordering per period.
type LeaderboardService struct {
	solutions repository.SolutionRepository
	users     repository.UserRepository
	cache     cache.Cache
	loc       *time.Location
	now       func() time.Time
	logger    *logger.Logger
}

func NewLeaderboardService(solutions repository.SolutionRepository, users repository.UserRepository, c cache.Cache, loc *time.Location, log *logger.Logger) *LeaderboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaderboardService{
		solutions: solutions,
		users:     users,
		cache:     c,
		loc:       loc,
		now:       time.Now,
		logger:    log,
	}
}

func cacheKey(period string) string {
	return leaderboardKeyPrefix + period
}

// Get returns the top limit entries for period. limit <= 0 returns everyone.
func (s *LeaderboardService) Get(ctx context.Context, period string, limit int) ([]model.LeaderboardEntry, error) {
	traceID := uuid.New().String()
	period = strings.ToLower(strings.TrimSpace(period))
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting GetLeaderboard", map[string]any{
		"method": "GetLeaderboard",
		"period": period,
		"limit":  limit,
	}, "SERVICE", nil)

	start, end, err := leaderboard.Window(period, s.now(), s.loc)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "GetLeaderboard", "Invalid leaderboard period", map[string]any{"period": period}, err)
	}

	if entries, ok := s.fromCache(ctx, traceID, period); ok {
		return truncate(entries, limit), nil
	}

	entries, err := s.compute(ctx, start, end)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "GetLeaderboard", "Failed to compute leaderboard", map[string]any{"period": period}, err)
	}
	s.store(ctx, traceID, period, entries)

	s.logger.Log(zapcore.InfoLevel, traceID, "Leaderboard computed", map[string]any{
		"method":  "GetLeaderboard",
		"period":  period,
		"entries": len(entries),
	}, "SERVICE", nil)
	return truncate(entries, limit), nil
}

func (s *LeaderboardService) compute(ctx context.Context, start, end time.Time) ([]model.LeaderboardEntry, error) {
	tallies, err := s.solutions.TallyBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.Rank(tallies, users, 0), nil
}

func (s *LeaderboardService) fromCache(ctx context.Context, traceID, period string) ([]model.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, cacheKey(period))
	if err != nil || cached == nil {
		return nil, false
	}
	cachedStr, ok := cached.(string)
	if !ok {
		s.logger.Log(zapcore.ErrorLevel, traceID, "Failed to assert cached leaderboard to string", map[string]any{
			"method":    "GetLeaderboard",
			"cacheKey":  cacheKey(period),
			"errorType": "CACHE_ERROR",
		}, "SERVICE", nil)
		return nil, false
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal([]byte(cachedStr), &entries); err != nil {
		s.logger.Log(zapcore.ErrorLevel, traceID, "Failed to decode cached leaderboard", map[string]any{
			"method":    "GetLeaderboard",
			"cacheKey":  cacheKey(period),
			"errorType": "CACHE_ERROR",
		}, "SERVICE", err)
		return nil, false
	}
	s.logger.Log(zapcore.DebugLevel, traceID, "Leaderboard retrieved from cache", map[string]any{
		"method":   "GetLeaderboard",
		"cacheKey": cacheKey(period),
	}, "SERVICE", nil)
	return entries, true
}

func (s *LeaderboardService) store(ctx context.Context, traceID, period string, entries []model.LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		s.logger.Log(zapcore.ErrorLevel, traceID, "Failed to marshal leaderboard", map[string]any{
			"method":    "GetLeaderboard",
			"errorType": "MARSHAL_ERROR",
		}, "SERVICE", err)
		return
	}
	if err := s.cache.Set(ctx, cacheKey(period), data, leaderboardCacheTTL); err != nil {
		s.logger.Log(zapcore.ErrorLevel, traceID, "Failed to cache leaderboard", map[string]any{
			"method":    "GetLeaderboard",
			"cacheKey":  cacheKey(period),
			"errorType": "CACHE_ERROR",
		}, "SERVICE", err)
	}
}

// Invalidate drops every cached period. Failures are logged only.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(leaderboard.Periods))
	for _, p := range leaderboard.Periods {
		keys = append(keys, cacheKey(p))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Log(zapcore.ErrorLevel, "", "Failed to invalidate leaderboard cache", map[string]any{
			"method":    "InvalidateLeaderboard",
			"errorType": "CACHE_ERROR",
		}, "SERVICE", err)
	}
}

// Warm recomputes and caches every period.
func (s *LeaderboardService) Warm(ctx context.Context) error {
	traceID := uuid.New().String()
	now := s.now()
	for _, period := range leaderboard.Periods {
		start, end, err := leaderboard.Window(period, now, s.loc)
		if err != nil {
			return err
		}
		entries, err := s.compute(ctx, start, end)
		if err != nil {
			return logFailure(s.logger, traceID, "WarmLeaderboard", "Failed to warm leaderboard", map[string]any{"period": period}, err)
		}
		s.store(ctx, traceID, period, entries)
	}
	s.logger.Log(zapcore.InfoLevel, traceID, "Leaderboard cache warmed", map[string]any{
		"method": "WarmLeaderboard",
	}, "SERVICE", nil)
	return nil
}

// WarmIfCold computes only the periods missing from the cache, so a restart
// against a shared redis reuses rankings other instances already stored.
func (s *LeaderboardService) WarmIfCold(ctx context.Context) error {
	if s.cache == nil {
		return s.Warm(ctx)
	}
	traceID := uuid.New().String()
	now := s.now()
	warmed := 0
	for _, period := range leaderboard.Periods {
		ok, err := s.cache.Exists(ctx, cacheKey(period))
		if err == nil && ok {
			continue
		}
		start, end, err := leaderboard.Window(period, now, s.loc)
		if err != nil {
			return err
		}
		entries, err := s.compute(ctx, start, end)
		if err != nil {
			return logFailure(s.logger, traceID, "WarmLeaderboard", "Failed to warm leaderboard", map[string]any{"period": period}, err)
		}
		s.store(ctx, traceID, period, entries)
		warmed++
	}
	s.logger.Log(zapcore.InfoLevel, traceID, "Cold leaderboard periods warmed", map[string]any{
		"method": "WarmLeaderboard",
		"warmed": warmed,
	}, "SERVICE", nil)
	return nil
}

// StartCronJob schedules periodic warming. The returned cron must be stopped
// on shutdown.
func (s *LeaderboardService) StartCronJob() (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc))

	_, err := c.AddFunc(leaderboardSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.logger.Log(zapcore.InfoLevel, "", "Warming leaderboard cache "+s.now().In(s.loc).Format(time.RFC3339), map[string]any{
			"method": "LEADERBOARD CRON JOB",
		}, "SERVICE", nil)
		_ = s.Warm(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule leaderboard job: %w", err)
	}

	c.Start()
	return c, nil
}

func truncate(entries []model.LeaderboardEntry, limit int) []model.LeaderboardEntry {
	if entries == nil {
		return []model.LeaderboardEntry{}
	}
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
