package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATS publishes run summaries as JSON on a subject.
type NATS struct {
	conn    publisher
	subject string
}

// NewNATS connects to url. The caller must Close the notifier.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("seogen"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "connect to NATS").
			WithContext("url", url).Build()
	}
	return &NATS{conn: conn, subject: subject}, nil
}

func newNATSWithConn(conn publisher, subject string) *NATS {
	return &NATS{conn: conn, subject: subject}
}

func (n *NATS) Name() string { return "nats" }

// Notify publishes s and waits for the server to acknowledge the flush.
func (n *NATS) Notify(ctx context.Context, s Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "publish run summary").
			WithContext("subject", n.subject).Build()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "flush NATS connection").
			WithContext("subject", n.subject).Build()
	}
	return nil
}

// Close drops the connection.
func (n *NATS) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
