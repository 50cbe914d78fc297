package natsclient

import (
	"time"

	"github.com/nats-io/nats.go"
)

type NatsClient struct {
	Conn *nats.Conn
}

func NewNatsClient(natsURL string) (*NatsClient, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("opengalaxy"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NatsClient{Conn: nc}, nil
}

// Close drains pending messages before closing the connection.
func (n *NatsClient) Close() {
	if n.Conn != nil {
		_ = n.Conn.Drain()
	}
}

func (n *NatsClient) Publish(subject string, data []byte) error {
	return n.Conn.Publish(subject, data)
}

// QueueSubscribe spreads messages across every instance sharing queue.
func (n *NatsClient) QueueSubscribe(subject, queue string, handler func(*nats.Msg)) (*nats.Subscription, error) {
	return n.Conn.QueueSubscribe(subject, queue, handler)
}
