// Package events publishes domain events to a RabbitMQ topic exchange or a
// Google Cloud Pub/Sub topic.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storeshop/pkg/config"
)

// Routing keys.
const (
	KeyOrderRecorded = "order.recorded"
	KeyMailComposed  = "mail.composed"
)

// Publisher emits JSON events.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Rabbit publishes to a durable topic exchange.
type Rabbit struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	now      func() time.Time
}

// Open picks the configured backend. With neither configured it returns
// a Nop publisher.
func Open(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch {
	case strings.TrimSpace(cfg.PubSubProject) != "":
		return DialPubSub(ctx, cfg.PubSubProject, cfg.PubSubTopic)
	default:
		return Dial(strings.TrimSpace(cfg.AMQPURL), cfg.Exchange)
	}
}

// Dial connects to url and declares exchange. An empty url returns a Nop
// publisher so callers never branch on configuration.
func Dial(url, exchange string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	if exchange == "" {
		return nil, errors.New("events: exchange is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

// Publish marshals payload and sends it under key.
func (r *Rabbit) Publish(ctx context.Context, key string, payload any) error {
	if r == nil || r.ch == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", key, err)
	}
	// amqp channels are not safe for concurrent publishes
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch.PublishWithContext(ctx, r.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    r.now(),
	})
}

// Close releases the channel and connection.
func (r *Rabbit) Close() error {
	if r == nil {
		return nil
	}
	var err error
	if r.ch != nil {
		err = multierr.Append(err, r.ch.Close())
	}
	if r.conn != nil {
		err = multierr.Append(err, r.conn.Close())
	}
	return err
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
