// Package notify carries domain events to email recipients, either over NATS
// or directly in-process.
package notify

import (
	"time"

	"opengalaxy/model"
)

type Kind string

const (
	KindProblemPosted     Kind = "problem_posted"
	KindSolutionSubmitted Kind = "solution_submitted"
	KindSolutionAccepted  Kind = "solution_accepted"
	KindLoginSucceeded    Kind = "login_succeeded"
)

// SubjectPrefix is the NATS subject root; each kind publishes on
// SubjectPrefix + "." + kind.
const SubjectPrefix = "opengalaxy.notify"

// Event holds ids only. Recipients are resolved at delivery time.
type Event struct {
	Kind         Kind      `json:"kind"`
	TraceID      string    `json:"traceId,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	ProblemID    string    `json:"problemId,omitempty"`
	ProblemTitle string    `json:"problemTitle,omitempty"`
	PostedBy     string    `json:"postedBy,omitempty"`
	SolutionID   string    `json:"solutionId,omitempty"`
	SubmittedBy  string    `json:"submittedBy,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func (e Event) Subject() string {
	return SubjectPrefix + "." + string(e.Kind)
}

func ProblemPosted(traceID string, p *model.Problem) Event {
	return Event{
		Kind:         KindProblemPosted,
		TraceID:      traceID,
		ProblemID:    p.ID.Hex(),
		ProblemTitle: p.Title,
		PostedBy:     p.PostedBy,
		OccurredAt:   time.Now(),
	}
}

func SolutionSubmitted(traceID string, s *model.Solution, p *model.Problem) Event {
	return Event{
		Kind:         KindSolutionSubmitted,
		TraceID:      traceID,
		ProblemID:    p.ID.Hex(),
		ProblemTitle: p.Title,
		PostedBy:     p.PostedBy,
		SolutionID:   s.ID.Hex(),
		SubmittedBy:  s.SubmittedBy,
		OccurredAt:   time.Now(),
	}
}

func SolutionAccepted(traceID string, s *model.Solution, p *model.Problem) Event {
	e := SolutionSubmitted(traceID, s, p)
	e.Kind = KindSolutionAccepted
	return e
}

func LoginSucceeded(traceID string, u *model.User) Event {
	return Event{
		Kind:       KindLoginSucceeded,
		TraceID:    traceID,
		UserID:     u.ID.Hex(),
		OccurredAt: time.Now(),
	}
}
