// Package amqp publishes auction lifecycle events to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gavelhq/gavel/internal/ledger/event"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange auction lifecycle events are published to.
// Routing keys are the event types (auction.created, auction.bid, ...).
const Exchange = "auction.events"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends auction lifecycle events to a RabbitMQ topic exchange.
type Publisher struct {
	conn *amqp.Connection
	ch   channel
}

// Dial connects to RabbitMQ, opens a channel, and declares the topic exchange.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	publisher := &Publisher{conn: conn, ch: ch}
	if err := publisher.declareExchange(); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return publisher, nil
}

func (p *Publisher) declareExchange() error {
	if err := p.ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	return nil
}

// Publish sends one event with its type as the routing key.
func (p *Publisher) Publish(ctx context.Context, evt event.Event) error {
	if p == nil || p.ch == nil {
		return fmt.Errorf("publisher is not configured")
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, Exchange, string(evt.Type), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
