// Package leaderboard ranks users by recent contribution activity.
package leaderboard

import (
	"sort"
	"strings"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

var Periods = []string{PeriodWeekly, PeriodMonthly, PeriodYearly}

// Window returns the inclusive [start, end] range for a period label, computed
// in loc. end is now.
func Window(period string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	y, m, d := now.Date()
	var start time.Time
	switch strings.ToLower(strings.TrimSpace(period)) {
	case PeriodYearly:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case PeriodMonthly:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodWeekly:
		// Monday-based week; Sunday reaches back six days.
		offset := (int(now.Weekday()) + 6) % 7
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	default:
		return time.Time{}, time.Time{}, apperr.Invalid("invalid period: %s", period)
	}
	return start, now, nil
}

type standing struct {
	user     *model.User
	solved   int
	accepted int
	score    int
}

// Score is the ranking formula: lifetime points plus window activity, with
// accepted solutions weighted double.
func Score(points, accepted, solutions int) int {
	return points + 2*accepted + solutions
}

// Rank merges window tallies with every user, orders them and keeps the top
// limit entries. limit <= 0 keeps everyone. Tallies for unknown users are
// dropped.
func Rank(tallies []model.SolutionTally, users []model.User, limit int) []model.LeaderboardEntry {
	byUser := make(map[string]model.SolutionTally, len(tallies))
	for _, t := range tallies {
		byUser[t.UserID] = t
	}

	standings := make([]standing, 0, len(users))
	for i := range users {
		u := &users[i]
		t := byUser[u.ID.Hex()]
		standings = append(standings, standing{
			user:     u,
			solved:   t.SolutionCount,
			accepted: t.AcceptedCount,
			score:    Score(u.Points, t.AcceptedCount, t.SolutionCount),
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		return less(standings[i], standings[j])
	})

	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}

	out := make([]model.LeaderboardEntry, 0, len(standings))
	for i, s := range standings {
		summary := model.ToUserSummary(s.user)
		out = append(out, model.LeaderboardEntry{
			Rank:           i + 1,
			Username:       summary.Username,
			FullName:       summary.FullName,
			ProfilePicture: summary.ProfilePicture,
			Points:         summary.Points,
			Badges:         summary.Badges,
			Score:          s.score,
			SolutionCount:  s.solved,
			AcceptedCount:  s.accepted,
		})
	}
	return out
}

// less orders by score, points, accepted, solutions (all descending), then
// username and id so the order is total.
func less(a, b standing) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.user.Points != b.user.Points {
		return a.user.Points > b.user.Points
	}
	if a.accepted != b.accepted {
		return a.accepted > b.accepted
	}
	if a.solved != b.solved {
		return a.solved > b.solved
	}
	if a.user.Username != b.user.Username {
		return a.user.Username < b.user.Username
	}
	return a.user.ID.Hex() < b.user.ID.Hex()
}
