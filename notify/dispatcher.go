package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"opengalaxy/logger"
	"opengalaxy/natsclient"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap/zapcore"
)

// Dispatcher is fire-and-forget: failures are logged, never returned.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event)
}

type Publisher interface {
	Publish(subject string, data []byte) error
}

type NatsDispatcher struct {
	publisher Publisher
	logger    *logger.Logger
}

func NewNatsDispatcher(publisher Publisher, log *logger.Logger) *NatsDispatcher {
	return &NatsDispatcher{publisher: publisher, logger: log}
}

func (d *NatsDispatcher) Dispatch(_ context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		d.logger.Log(zapcore.ErrorLevel, e.TraceID, "Failed to marshal notification", map[string]any{"kind": e.Kind}, "NOTIFY", err)
		return
	}
	if err := d.publisher.Publish(e.Subject(), data); err != nil {
		d.logger.Log(zapcore.ErrorLevel, e.TraceID, "Failed to publish notification", map[string]any{
			"kind":    e.Kind,
			"subject": e.Subject(),
		}, "NOTIFY", err)
	}
}

// DirectDispatcher delivers in a background goroutine. Wait blocks until all
// in-flight deliveries finish.
type DirectDispatcher struct {
	deliverer *Deliverer
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDirectDispatcher(deliverer *Deliverer) *DirectDispatcher {
	return &DirectDispatcher{deliverer: deliverer, timeout: 30 * time.Second}
}

func (d *DirectDispatcher) Dispatch(_ context.Context, e Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.deliverer.Deliver(ctx, e)
	}()
}

func (d *DirectDispatcher) Wait() {
	d.wg.Wait()
}

const subscriberQueue = "opengalaxy-mailer"

// Subscriber consumes every notification subject and delivers mail.
type Subscriber struct {
	deliverer *Deliverer
	logger    *logger.Logger
	timeout   time.Duration
}

func NewSubscriber(deliverer *Deliverer, log *logger.Logger) *Subscriber {
	return &Subscriber{deliverer: deliverer, logger: log, timeout: 30 * time.Second}
}

func (s *Subscriber) Start(client *natsclient.NatsClient) (*nats.Subscription, error) {
	return client.QueueSubscribe(SubjectPrefix+".>", subscriberQueue, s.Handle)
}

func (s *Subscriber) Handle(msg *nats.Msg) {
	var e Event
	if err := json.Unmarshal(msg.Data, &e); err != nil {
		s.logger.Log(zapcore.ErrorLevel, "", "Dropping malformed notification", map[string]any{"subject": msg.Subject}, "NOTIFY", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.deliverer.Deliver(ctx, e)
}
