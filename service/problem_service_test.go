package service

import (
	"context"
	"testing"

	"opengalaxy/apperr"
	"opengalaxy/model"
	"opengalaxy/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProblem(t *testing.T) {
	env := newTestEnv(t)
	poster := env.user(t, "1", "poster", 0)

	p := env.problem(t, poster)
	assert.Equal(t, model.ProblemStatusOpen, p.Status)
	assert.Equal(t, "docker-build-fails-on-arm", p.Slug)
	assert.Equal(t, "Go", p.Language)
	assert.Equal(t, []string{"docker", "arm"}, p.Tags)
	assert.Equal(t, poster.ID.Hex(), p.PostedBy)
	assert.Equal(t, []notify.Kind{notify.KindProblemPosted}, env.dispatcher.kinds())
}

func TestCreateProblem_Validation(t *testing.T) {
	env := newTestEnv(t)
	poster := env.user(t, "1", "poster", 0)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.ProblemRequest
	}{
		{"missing title", model.ProblemRequest{Description: "d"}},
		{"blank title", model.ProblemRequest{Title: "  ", Description: "d"}},
		{"missing description", model.ProblemRequest{Title: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Problems.CreateProblem(ctx, poster.ID.Hex(), tt.req)
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		})
	}
	assert.Empty(t, env.dispatcher.kinds())
}

func TestGetProblem_WithSolutions(t *testing.T) {
	env := newTestEnv(t)
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	env.solution(t, solver, p)

	got, err := env.svc.Problems.GetProblem(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Problem.Title)
	assert.Equal(t, "poster", got.PostedBy.Username)
	require.Len(t, got.Solutions, 1)
	assert.Equal(t, "solver", got.Solutions[0].User.Username)

	_, err = env.svc.Problems.GetProblem(context.Background(), "652f1c0a9b1e8a0001a1b2c3")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProblem_PosterOnlyAndStatusUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	other := env.user(t, "2", "other", 0)
	p := env.problem(t, poster)
	require.NoError(t, env.repos.Problems.UpdateStatus(ctx, p.ID.Hex(), model.ProblemStatusSolved))

	req := model.ProblemRequest{Title: "Renamed problem", Description: "new", Language: "ts"}
	_, err := env.svc.Problems.UpdateProblem(ctx, other.ID.Hex(), p.ID.Hex(), req)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := env.svc.Problems.UpdateProblem(ctx, poster.ID.Hex(), p.ID.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, "renamed-problem", updated.Slug)
	assert.Equal(t, "TypeScript", updated.Language)
	assert.Equal(t, model.ProblemStatusSolved, env.reloadProblem(t, p).Status)
}

func TestDeleteProblem_CascadesSolutions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	solver := env.user(t, "2", "solver", 0)
	p := env.problem(t, poster)
	s := env.solution(t, solver, p)

	assert.ErrorIs(t, env.svc.Problems.DeleteProblem(ctx, solver.ID.Hex(), p.ID.Hex()), apperr.ErrForbidden)
	require.NoError(t, env.svc.Problems.DeleteProblem(ctx, poster.ID.Hex(), p.ID.Hex()))

	_, err := env.repos.Problems.FindByID(ctx, p.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.repos.Solutions.FindByID(ctx, s.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestToggleLike_BothSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	fan := env.user(t, "2", "fan", 0)
	p := env.problem(t, poster)

	liked, err := env.svc.Problems.ToggleLike(ctx, fan.ID.Hex(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{fan.ID.Hex()}, liked.Likes)
	assert.Equal(t, []string{p.ID.Hex()}, env.reloadUser(t, fan).LikedProblems)

	unliked, err := env.svc.Problems.ToggleLike(ctx, fan.ID.Hex(), p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
	assert.Empty(t, env.reloadUser(t, fan).LikedProblems)
}

func TestToggleSave_ListSaved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	poster := env.user(t, "1", "poster", 0)
	reader := env.user(t, "2", "reader", 0)
	p := env.problem(t, poster)

	saved, err := env.svc.Problems.ListSaved(ctx, reader.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, saved)

	got, err := env.svc.Problems.ToggleSave(ctx, reader.ID.Hex(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{reader.ID.Hex()}, got.SavedBy)

	saved, err = env.svc.Problems.ListSaved(ctx, reader.ID.Hex())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, p.ID, saved[0].ID)

	mine, err := env.svc.Problems.ListMine(ctx, poster.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
