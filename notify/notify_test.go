package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/repository"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
	mu sync.Mutex
}

func (m *mockSender) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type capturePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	p.subject, p.data = subject, data
	return p.err
}

type fixture struct {
	users     repository.UserRepository
	poster    *model.User
	submitter *model.User
	problem   *model.Problem
	solution  *model.Solution
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	users := repository.NewMemoryRepository().Users
	poster := &model.User{GithubID: "1", Username: "poster", FullName: "Pat Poster", Email: "pat@example.com"}
	submitter := &model.User{GithubID: "2", Username: "solver", Email: "solver@example.com"}
	require.NoError(t, users.Create(ctx, poster))
	require.NoError(t, users.Create(ctx, submitter))
	problem := &model.Problem{Title: "Flaky build", PostedBy: poster.ID.Hex()}
	solution := &model.Solution{SubmittedBy: submitter.ID.Hex()}
	return fixture{users: users, poster: poster, submitter: submitter, problem: problem, solution: solution}
}

func TestDeliverer_RoutesRecipients(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		event   Event
		to      string
		subject string
		body    string
	}{
		{"problem posted goes to poster", ProblemPosted("t1", f.problem), "pat@example.com", "Your problem is live on OpenGalaxy", "Pat Poster"},
		{"submitted goes to poster", SolutionSubmitted("t2", f.solution, f.problem), "pat@example.com", "New solution submitted to your problem", "solver just submitted"},
		{"accepted goes to submitter", SolutionAccepted("t3", f.solution, f.problem), "solver@example.com", "Your solution was accepted", "Flaky build"},
		{"login goes to user", LoginSucceeded("t4", f.submitter), "solver@example.com", "Welcome back to OpenGalaxy", "Hey solver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{}
			sender.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool {
				return m.To == tt.to && m.Subject == tt.subject
			})).Return(nil).Once()

			d := NewDeliverer(f.users, sender, logger.NewNop())
			require.NoError(t, d.Deliver(context.Background(), tt.event))
			sender.AssertExpectations(t)

			msg := sender.Calls[0].Arguments.Get(1).(Message)
			assert.Contains(t, msg.Body, tt.body)
		})
	}
}

func TestDeliverer_SkipsMissingRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noEmail := &model.User{GithubID: "3", Username: "quiet"}
	require.NoError(t, f.users.Create(ctx, noEmail))

	sender := &mockSender{}
	d := NewDeliverer(f.users, sender, logger.NewNop())

	assert.NoError(t, d.Deliver(ctx, LoginSucceeded("t", noEmail)))
	assert.NoError(t, d.Deliver(ctx, Event{Kind: KindProblemPosted, PostedBy: "deadbeefdeadbeefdeadbeef"}))
	assert.NoError(t, d.Deliver(ctx, Event{Kind: KindSolutionAccepted, SubmittedBy: ""}))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	assert.Error(t, d.Deliver(ctx, Event{Kind: "unknown"}))
}

func TestDeliverer_SendFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	d := NewDeliverer(f.users, sender, logger.NewNop())
	assert.Error(t, d.Deliver(context.Background(), ProblemPosted("t", f.problem)))
}

func TestNatsDispatcher_PublishesOnKindSubject(t *testing.T) {
	f := newFixture(t)
	pub := &capturePublisher{}
	d := NewNatsDispatcher(pub, logger.NewNop())

	d.Dispatch(context.Background(), SolutionAccepted("trace", f.solution, f.problem))

	assert.Equal(t, "opengalaxy.notify.solution_accepted", pub.subject)
	var e Event
	require.NoError(t, json.Unmarshal(pub.data, &e))
	assert.Equal(t, KindSolutionAccepted, e.Kind)
	assert.Equal(t, f.submitter.ID.Hex(), e.SubmittedBy)
	assert.Equal(t, "Flaky build", e.ProblemTitle)
}

func TestNatsDispatcher_PublishErrorIsSwallowed(t *testing.T) {
	f := newFixture(t)
	d := NewNatsDispatcher(&capturePublisher{err: errors.New("no responders")}, logger.NewNop())
	assert.NotPanics(t, func() { d.Dispatch(context.Background(), ProblemPosted("t", f.problem)) })
}

func TestSubscriber_HandleDelivers(t *testing.T) {
	f := newFixture(t)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool { return m.To == "pat@example.com" })).Return(nil).Once()

	s := NewSubscriber(NewDeliverer(f.users, sender, logger.NewNop()), logger.NewNop())
	data, err := json.Marshal(ProblemPosted("t", f.problem))
	require.NoError(t, err)

	s.Handle(&nats.Msg{Subject: "opengalaxy.notify.problem_posted", Data: data})
	s.Handle(&nats.Msg{Subject: "opengalaxy.notify.problem_posted", Data: []byte("{not json")})
	sender.AssertExpectations(t)
}

func TestDirectDispatcher_DeliversInBackground(t *testing.T) {
	f := newFixture(t)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Twice()

	d := NewDirectDispatcher(NewDeliverer(f.users, sender, logger.NewNop()))
	d.Dispatch(context.Background(), ProblemPosted("t", f.problem))
	d.Dispatch(context.Background(), SolutionAccepted("t", f.solution, f.problem))
	d.Wait()

	sender.AssertExpectations(t)
}
