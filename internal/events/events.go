// Package events publishes newsroom domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Routing keys
const (
	ArticlePublished  = "article.published"
	InviteIssued      = "invite.issued"
	SubmissionCreated = "submission.created"
	NewsletterSignup  = "newsletter.subscribed"
)

// Message is the envelope of every published event
type Message struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher sends domain events
type Publisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
	Close()
}

// PublishingChannel is the subset of *amqp.Channel the publisher needs
type PublishingChannel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

// RabbitPublisher publishes JSON messages with the event name as routing key
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       PublishingChannel
	exchange string
	log      zerolog.Logger
}

// NewRabbitPublisher dials uri and declares a durable topic exchange
func NewRabbitPublisher(uri, exchange string, log zerolog.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connection failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel creation failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare failed: %w", err)
	}

	return newRabbitPublisher(conn, ch, exchange, log), nil
}

func newRabbitPublisher(conn *amqp.Connection, ch PublishingChannel, exchange string, log zerolog.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log.With().Str("component", "events").Str("exchange", exchange).Logger(),
	}
}

// Publish sends one persistent JSON message routed by event
func (p *RabbitPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	body, err := json.Marshal(Message{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		event,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}

	p.log.Debug().Str("event", event).Msg("Event published")
	return nil
}

// Close closes the channel and connection
func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopPublisher logs events instead of sending them. It is used when no
// broker is configured.
type NopPublisher struct {
	log zerolog.Logger
}

// NewNopPublisher creates a publisher that only logs
func NewNopPublisher(log zerolog.Logger) *NopPublisher {
	return &NopPublisher{log: log.With().Str("component", "events").Logger()}
}

// Publish logs the event at debug level
func (p *NopPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	p.log.Debug().Str("event", event).Interface("payload", payload).Msg("Event dropped, no broker configured")
	return nil
}

// Close is a no-op
func (p *NopPublisher) Close() {}
