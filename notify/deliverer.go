package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"opengalaxy/apperr"
	"opengalaxy/logger"
	"opengalaxy/model"

	"go.uber.org/zap/zapcore"
)

type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Deliverer resolves an event's recipients and hands the mail to a Sender.
// Recipients without an email address are skipped silently.
type Deliverer struct {
	users  UserLookup
	sender Sender
	logger *logger.Logger
}

func NewDeliverer(users UserLookup, sender Sender, log *logger.Logger) *Deliverer {
	return &Deliverer{users: users, sender: sender, logger: log}
}

func (d *Deliverer) lookup(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, nil
	}
	u, err := d.users.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidArgument) {
		return nil, nil
	}
	return u, err
}

func (d *Deliverer) compose(ctx context.Context, e Event) (*Message, error) {
	switch e.Kind {
	case KindLoginSucceeded:
		u, err := d.lookup(ctx, e.UserID)
		if err != nil || u == nil {
			return nil, err
		}
		msg := loginMessage(u)
		return &msg, nil
	case KindProblemPosted:
		poster, err := d.lookup(ctx, e.PostedBy)
		if err != nil || poster == nil {
			return nil, err
		}
		msg := problemPostedMessage(poster, e.ProblemTitle)
		return &msg, nil
	case KindSolutionSubmitted:
		owner, err := d.lookup(ctx, e.PostedBy)
		if err != nil || owner == nil {
			return nil, err
		}
		submitter, err := d.lookup(ctx, e.SubmittedBy)
		if err != nil {
			return nil, err
		}
		msg := solutionSubmittedMessage(owner, submitter, e.ProblemTitle)
		return &msg, nil
	case KindSolutionAccepted:
		submitter, err := d.lookup(ctx, e.SubmittedBy)
		if err != nil || submitter == nil {
			return nil, err
		}
		msg := solutionAcceptedMessage(submitter, e.ProblemTitle)
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown notification kind %q", e.Kind)
	}
}

func (d *Deliverer) Deliver(ctx context.Context, e Event) error {
	msg, err := d.compose(ctx, e)
	if err != nil {
		d.logger.Log(zapcore.ErrorLevel, e.TraceID, "Failed to compose notification", map[string]any{
			"kind": e.Kind,
		}, "NOTIFY", err)
		return err
	}
	if msg == nil || strings.TrimSpace(msg.To) == "" {
		d.logger.Log(zapcore.DebugLevel, e.TraceID, "Notification skipped, no recipient", map[string]any{"kind": e.Kind}, "NOTIFY", nil)
		return nil
	}
	if err := d.sender.Send(ctx, *msg); err != nil {
		d.logger.Log(zapcore.ErrorLevel, e.TraceID, "Failed to send notification", map[string]any{
			"kind": e.Kind,
			"to":   msg.To,
		}, "NOTIFY", err)
		return err
	}
	d.logger.Log(zapcore.InfoLevel, e.TraceID, "Notification sent", map[string]any{"kind": e.Kind, "to": msg.To}, "NOTIFY", nil)
	return nil
}
