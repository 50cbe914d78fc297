package service

import (
	"context"
	"errors"
	"testing"

	"opengalaxy/apperr"
	"opengalaxy/model"
	"opengalaxy/notify"
	"opengalaxy/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSolution_LinksProblemAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)

	s := env.solution(t, solver, p)
	assert.Equal(t, "Go", s.Language)
	assert.False(t, s.IsAccepted)
	assert.Equal(t, []string{}, s.Upvotes)

	stored := env.reloadProblem(t, p)
	assert.Equal(t, []string{s.ID.Hex()}, stored.SolutionIDs)
	assert.Equal(t, []notify.Kind{notify.KindProblemPosted, notify.KindSolutionSubmitted}, env.dispatcher.kinds())
}

func TestCreateSolution_Validation(t *testing.T) {
	env := newTestEnv(t)
	poster := env.user(t, "1", "poster", 0)
	p := env.problem(t, poster)
	ctx := context.Background()

	_, err := env.svc.Solutions.CreateSolution(ctx, poster.ID.Hex(), p.ID.Hex(), model.SolutionRequest{Content: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = env.svc.Solutions.CreateSolution(ctx, poster.ID.Hex(), "652f1c0a9b1e8a0001a1b2c3", model.SolutionRequest{Content: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAcceptSolution_FirstAcceptanceAwardsBadgeAndCertificate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	accepted, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)

	assert.Equal(t, model.ProblemStatusSolved, env.reloadProblem(t, p).Status)

	got := env.reloadUser(t, solver)
	assert.Equal(t, 1, got.Points)
	assert.Equal(t, []string{"Code Spark"}, got.Badges)

	cert, err := env.repos.Certificates.FindActiveByUserID(ctx, solver.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"Code Spark"}, cert.AllSkills)
	assert.Equal(t, "Problem Solving Fundamentals", cert.CourseTitle)

	assert.Contains(t, env.dispatcher.kinds(), notify.KindSolutionAccepted)
}

func TestAcceptSolution_ToggleOffKeepsPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	_, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)
	again, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)

	assert.False(t, again.IsAccepted)
	assert.Equal(t, model.ProblemStatusOpen, env.reloadProblem(t, p).Status)
	assert.Equal(t, 1, env.reloadUser(t, solver).Points)
}

func TestAcceptSolution_AtMostOneAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	alice := env.user(t, "2", "alice", 0)
	bob := env.user(t, "3", "bob", 0)
	p := env.problem(t, poster)
	first := env.solution(t, alice, p)
	second := env.solution(t, bob, p)

	_, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), first.ID.Hex())
	require.NoError(t, err)
	_, err = env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), second.ID.Hex())
	require.NoError(t, err)

	assert.False(t, env.reloadSolution(t, first).IsAccepted)
	assert.True(t, env.reloadSolution(t, second).IsAccepted)
	assert.Equal(t, model.ProblemStatusSolved, env.reloadProblem(t, p).Status)
	assert.Equal(t, 1, env.reloadUser(t, alice).Points)
	assert.Equal(t, 1, env.reloadUser(t, bob).Points)
}

func TestAcceptSolution_OnlyPoster(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	_, err := env.svc.Solutions.AcceptSolution(ctx, solver.ID.Hex(), s.ID.Hex())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "only the problem poster can accept a solution", err.Error())

	assert.False(t, env.reloadSolution(t, s).IsAccepted)
	assert.Equal(t, model.ProblemStatusOpen, env.reloadProblem(t, p).Status)
	assert.Equal(t, 0, env.reloadUser(t, solver).Points)
}

type failingGithubLookup struct {
	repository.UserRepository
}

func (failingGithubLookup) FindByGithubID(context.Context, string) (*model.User, error) {
	return nil, apperr.Internal(errors.New("connection reset"), "failed to load user")
}

func TestAcceptSolution_CertificateFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	env.svc.Solutions.certificates = NewCertificateService(env.repos.Certificates, failingGithubLookup{env.repos.Users}, nil, "", nil, env.svc.Solutions.logger)

	_, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, env.reloadUser(t, solver).Points)

	_, err = env.repos.Certificates.FindActiveByUserID(ctx, solver.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAcceptSolution_MultipleThresholdsAtOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 4)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	_, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)

	got := env.reloadUser(t, solver)
	assert.Equal(t, 5, got.Points)
	assert.Equal(t, []string{"Code Spark", "Stellar Coder", "Cosmic Contributor"}, got.Badges)
}

func TestDeleteSolution_ReopensProblemWhenAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)
	_, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Solutions.DeleteSolution(ctx, poster.ID.Hex(), s.ID.Hex()), apperr.ErrForbidden)

	require.NoError(t, env.svc.Solutions.DeleteSolution(ctx, solver.ID.Hex(), s.ID.Hex()))
	stored := env.reloadProblem(t, p)
	assert.Equal(t, model.ProblemStatusOpen, stored.Status)
	assert.Empty(t, stored.SolutionIDs)

	_, err = env.repos.Solutions.FindByID(ctx, s.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateSolution_SubmitterOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	req := model.SolutionRequest{Content: "updated", Language: "py"}
	_, err := env.svc.Solutions.UpdateSolution(ctx, poster.ID.Hex(), s.ID.Hex(), req)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := env.svc.Solutions.UpdateSolution(ctx, solver.ID.Hex(), s.ID.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Content)
	assert.Equal(t, "Python", updated.Language)
}

func TestToggleUpvote_CountTracksSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	fan := env.user(t, "3", "fan", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	got, err := env.svc.Solutions.ToggleUpvote(ctx, fan.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)
	got, err = env.svc.Solutions.ToggleUpvote(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, got.UpvoteCount)
	got, err = env.svc.Solutions.ToggleUpvote(ctx, fan.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)
	assert.Equal(t, []string{poster.ID.Hex()}, got.Upvotes)

	stored := env.reloadSolution(t, s)
	assert.Equal(t, len(stored.Upvotes), stored.UpvoteCount)
}

func TestListByProblem_IncludesSubmitterSummary(t *testing.T) {
	env := newTestEnv(t)
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 3, "Code Spark", "Stellar Coder")
	p := env.problem(t, poster)
	env.solution(t, solver, p)

	views, err := env.svc.Solutions.ListByProblem(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "solver", views[0].User.Username)
	assert.Equal(t, 3, views[0].User.Points)
}

func TestAchievementStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 2, "Code Spark")
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)
	env.solution(t, solver, p)
	_, err := env.svc.Solutions.AcceptSolution(ctx, poster.ID.Hex(), s.ID.Hex())
	require.NoError(t, err)

	stats, err := env.svc.Solutions.AchievementStats(ctx, solver.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSolutions)
	assert.Equal(t, 1, stats.AcceptedSolutions)
	assert.Equal(t, 3, stats.Points)
	assert.Equal(t, 2, stats.BadgeCount)
	require.NotNil(t, stats.NextBadge)
	assert.Equal(t, "Cosmic Contributor", *stats.NextBadge)
	assert.Equal(t, 2, stats.PointsToNextBadge)
}
