package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"storefront/internal/bootstrap/config"
	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/ports"
)

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

var _ ports.CartEventPublisher = Noop{}

func (Noop) Publish(context.Context, ports.CartEvent) error { return nil }

// natsConn is the subset of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes cart events as JSON on "<subject>.<event type>".
type NATSPublisher struct {
	conn    natsConn
	subject string
}

var _ ports.CartEventPublisher = (*NATSPublisher)(nil)

func ConnectNATS(ctx context.Context, cfg config.EventsConfig) (*NATSPublisher, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	url := strings.TrimSpace(cfg.NATSURL)
	if url == "" {
		return nil, errors.New("events.nats_url is required")
	}

	conn, err := nats.Connect(url,
		nats.Name("storefront"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", url)
	}

	logging.Info(logging.WithComponent(ctx, "infrastructure.events"), "nats connected",
		slog.String("url", conn.ConnectedUrl()),
		slog.String("subject", cfg.Subject),
	)
	return newNATSPublisher(conn, cfg.Subject), nil
}

func newNATSPublisher(conn natsConn, subject string) *NATSPublisher {
	subject = strings.Trim(strings.TrimSpace(subject), ".")
	if subject == "" {
		subject = "storefront.cart"
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

// Subject returns the subject an event of the given type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.subject + "." + strings.TrimPrefix(eventType, "cart.")
}

func (p *NATSPublisher) Publish(ctx context.Context, event ports.CartEvent) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "encode cart event")
	}
	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		return errs.Wrapf(err, "publish %s", event.Type)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}
