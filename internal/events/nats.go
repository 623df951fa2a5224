package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/rpsarena/internal/model"
)

// SubjectPrefix is prepended to the event type to form the NATS subject
const SubjectPrefix = "rps.events"

// NATSConfig holds NATS connection settings
type NATSConfig struct {
	URL            string
	Name           string
	ConnectTimeout time.Duration
}

// DefaultNATSConfig returns sensible defaults for the NATS publisher
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:            nats.DefaultURL,
		Name:           "rpsarena",
		ConnectTimeout: 2 * time.Second,
	}
}

// Subject returns the NATS subject an event type is published on
func Subject(eventType model.EventType) string {
	return SubjectPrefix + "." + string(eventType)
}

// NATSPublisher publishes JSON-encoded events to NATS
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(cfg NATSConfig, logger *slog.Logger) (*NATSPublisher, error) {
	logger = logger.With(slog.String("component", "nats"))

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", cfg.URL, err)
	}

	logger.Info("nats connected", slog.String("url", conn.ConnectedUrl()))
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish encodes the event and publishes it on its subject
func (p *NATSPublisher) Publish(ctx context.Context, event model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	return p.conn.Publish(Subject(event.Type), data)
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
