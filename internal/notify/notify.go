// Package notify announces finished builds on a NATS subject so other
// tooling (preview servers, chat bots) can react without polling.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/kssbuilder/internal/logfields"
	"git.home.luguber.info/inful/kssbuilder/internal/observability"
)

// BuildEvent is the JSON payload published after every build.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Status      string    `json:"status"`
	Destination string    `json:"destination"`
	Roots       []string  `json:"roots"`
	Pages       int       `json:"pages"`
	Skipped     int       `json:"skipped"`
	Failures    int       `json:"failures"`
	BrokenLinks int       `json:"broken_links"`
	Revision    string    `json:"revision,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, event BuildEvent) error
	Close()
}

// Noop discards events. It is used when no NATS URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, BuildEvent) error { return nil }
func (Noop) Close()                                    {}

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes build events with core NATS.
type NATSPublisher struct {
	conn    conn
	subject string
}

const connectTimeout = 5 * time.Second

// NewNATSPublisher connects to url. Connection failures are warnings: the
// build has already succeeded when an event is sent.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("kssbuilder"), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, foundationerrors.NotifyError("failed to connect to NATS").WithCause(err).
			WithContext("url", url).
			Build()
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish marshals event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event BuildEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return foundationerrors.InternalError("failed to marshal build event").WithCause(err).Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return foundationerrors.NotifyError("failed to publish build event").WithCause(err).
			WithContext("subject", p.subject).
			Build()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return foundationerrors.NotifyError("failed to flush build event").WithCause(err).
			WithContext("subject", p.subject).
			Build()
	}
	observability.DebugContext(ctx, "Published build event",
		logfields.Subject(p.subject),
		logfields.BuildID(event.BuildID))
	return nil
}

// Close drains nothing and closes the connection.
func (p *NATSPublisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}

// New returns a NATS publisher when url is set and Noop otherwise.
func New(url, subject string) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewNATSPublisher(url, subject)
}
