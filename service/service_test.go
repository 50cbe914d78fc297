package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"opengalaxy/cache"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/notify"
	"opengalaxy/repository"
	"opengalaxy/security"

	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) kinds() []notify.Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notify.Kind, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakePDF struct {
	err error
}

func (f fakePDF) PDF(_ context.Context, html []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("%PDF-1.4\n"), html[:16]...), nil
}

var errPrinter = errors.New("chrome not found")

type testEnv struct {
	repos      repository.Repositories
	cache      *cache.MemoryCache
	dispatcher *recordingDispatcher
	svc        *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := repository.NewMemoryRepository()
	c := cache.NewMemoryCache()
	d := &recordingDispatcher{}
	svc := NewServices(Deps{
		Repos:      repos,
		Cache:      c,
		Dispatcher: d,
		PDF:        fakePDF{},
		Tokens:     security.NewTokenIssuer([]byte("test-secret"), time.Hour),
		OAuth:      NewGithubOAuthConfig("client", "secret", "http://localhost/callback"),
		Logger:     logger.NewNop(),
		BaseURL:    "https://opengalaxy.test",
		Location:   time.UTC,
	})
	return &testEnv{repos: repos, cache: c, dispatcher: d, svc: svc}
}

func (e *testEnv) user(t *testing.T, githubID, username string, points int, badges ...string) *model.User {
	t.Helper()
	if badges == nil {
		badges = []string{}
	}
	u := &model.User{
		GithubID: githubID,
		Username: username,
		FullName: username + " Full",
		Email:    username + "@example.com",
		Points:   points,
		Badges:   badges,
	}
	require.NoError(t, e.repos.Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) problem(t *testing.T, poster *model.User) *model.Problem {
	t.Helper()
	p, err := e.svc.Problems.CreateProblem(context.Background(), poster.ID.Hex(), model.ProblemRequest{
		Title:       "Docker build fails on ARM",
		Description: "exec format error when running the image",
		Language:    "golang",
		Tags:        []string{"docker", "Docker", " arm "},
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) solution(t *testing.T, submitter *model.User, p *model.Problem) *model.Solution {
	t.Helper()
	s, err := e.svc.Solutions.CreateSolution(context.Background(), submitter.ID.Hex(), p.ID.Hex(), model.SolutionRequest{
		Content:  "Build with --platform linux/arm64",
		Language: "go",
	})
	require.NoError(t, err)
	return s
}

func (e *testEnv) reloadUser(t *testing.T, u *model.User) *model.User {
	t.Helper()
	got, err := e.repos.Users.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	return got
}

func (e *testEnv) reloadProblem(t *testing.T, p *model.Problem) *model.Problem {
	t.Helper()
	got, err := e.repos.Problems.FindByID(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	return got
}

func (e *testEnv) reloadSolution(t *testing.T, s *model.Solution) *model.Solution {
	t.Helper()
	got, err := e.repos.Solutions.FindByID(context.Background(), s.ID.Hex())
	require.NoError(t, err)
	return got
}
