package leaderboard

import (
	"errors"
	"testing"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUser(username string, points int) model.User {
	return model.User{ID: primitive.NewObjectID(), Username: username, FullName: username + " Doe", Points: points, Email: username + "@example.com"}
}

func tally(u model.User, solutions, accepted int) model.SolutionTally {
	return model.SolutionTally{UserID: u.ID.Hex(), SolutionCount: solutions, AcceptedCount: accepted}
}

func usernames(entries []model.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Username
	}
	return out
}

func TestRankScoreFormula(t *testing.T) {
	alice := newUser("alice", 3)
	bob := newUser("bob", 1)

	got := Rank([]model.SolutionTally{tally(bob, 2, 2)}, []model.User{alice, bob}, 10)

	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Username)
	assert.Equal(t, 1+2*2+2, got[0].Score)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "alice", got[1].Username)
	assert.Equal(t, 3, got[1].Score)
	assert.Equal(t, 0, got[1].SolutionCount)
}

func TestRankTieBreakChain(t *testing.T) {
	// a and b share score and points; a has more accepted solutions
	a := newUser("zed", 5)
	b := newUser("amy", 5)
	// c has the same score but fewer points
	c := newUser("carl", 3)

	tallies := []model.SolutionTally{
		tally(a, 0, 2), // 5 + 4 + 0 = 9
		tally(b, 2, 1), // 5 + 2 + 2 = 9
		tally(c, 2, 2), // 3 + 4 + 2 = 9
	}
	got := Rank(tallies, []model.User{c, b, a}, 0)
	assert.Equal(t, []string{"zed", "amy", "carl"}, usernames(got))
}

func TestRankSolutionCountThenUsername(t *testing.T) {
	a := newUser("beta", 2)
	b := newUser("alpha", 2)
	d := newUser("delta", 0)

	tallies := []model.SolutionTally{
		tally(a, 2, 0), // 4
		tally(b, 2, 0), // 4
		tally(d, 4, 0), // 4, fewer points
	}
	got := Rank(tallies, []model.User{a, d, b}, 0)
	assert.Equal(t, []string{"alpha", "beta", "delta"}, usernames(got))
}

func TestRankEmptyWindowUsesLifetimePoints(t *testing.T) {
	users := []model.User{newUser("low", 1), newUser("high", 9), newUser("mid", 4)}
	got := Rank(nil, users, 0)
	assert.Equal(t, []string{"high", "mid", "low"}, usernames(got))
	for _, e := range got {
		assert.Equal(t, e.Points, e.Score)
	}
}

func TestRankLimitAndUnknownTallies(t *testing.T) {
	users := []model.User{newUser("a", 1), newUser("b", 2), newUser("c", 3)}
	ghost := model.SolutionTally{UserID: primitive.NewObjectID().Hex(), SolutionCount: 50, AcceptedCount: 50}

	got := Rank([]model.SolutionTally{ghost}, users, 2)
	assert.Equal(t, []string{"c", "b"}, usernames(got))
}

func TestRankProjectionHasNoPrivateData(t *testing.T) {
	got := Rank(nil, []model.User{newUser("solo", 0)}, 1)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Badges)
	assert.Equal(t, "solo Doe", got[0].FullName)
}

func TestWindow(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	friday := time.Date(2026, time.October, 16, 15, 30, 0, 0, loc)
	sunday := time.Date(2026, time.October, 18, 23, 0, 0, 0, loc)
	monday := time.Date(2026, time.October, 12, 0, 0, 0, 0, loc)

	tests := []struct {
		period string
		now    time.Time
		start  time.Time
	}{
		{"yearly", friday, time.Date(2026, time.January, 1, 0, 0, 0, 0, loc)},
		{"monthly", friday, time.Date(2026, time.October, 1, 0, 0, 0, 0, loc)},
		{"weekly", friday, monday},
		{"WEEKLY", sunday, monday},
		{"weekly", monday.Add(time.Hour), monday},
	}
	for _, tc := range tests {
		start, end, err := Window(tc.period, tc.now, loc)
		require.NoError(t, err, tc.period)
		assert.True(t, tc.start.Equal(start), "%s: got %s want %s", tc.period, start, tc.start)
		assert.True(t, tc.now.Equal(end))
	}
}

func TestWindowConvertsIntoZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Sunday is already Monday in IST
	now := time.Date(2026, time.October, 18, 20, 0, 0, 0, time.UTC)
	start, _, err := Window(PeriodWeekly, now, loc)
	require.NoError(t, err)
	assert.Equal(t, 19, start.Day())
}

func TestWindowRejectsUnknownPeriod(t *testing.T) {
	_, _, err := Window("daily", time.Now(), time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}
