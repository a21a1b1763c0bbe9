package amqp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gavelhq/gavel/internal/ledger/event"
	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	declared  bool
	exchange  string
	key       string
	published []amqp.Publishing
	err       error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = true
	f.exchange = name
	return f.err
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange = exchange
	f.key = key
	f.published = append(f.published, msg)
	return nil
}

func TestPublishRoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &Publisher{ch: ch}

	evt := event.Event{
		ID:         "evt-1",
		Type:       event.TypeBidPlaced,
		AuctionID:  4,
		AssetID:    2,
		Account:    "bidder",
		Amount:     25,
		OccurredAt: time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC),
	}
	if err := publisher.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if ch.exchange != Exchange {
		t.Fatalf("exchange = %q, want %q", ch.exchange, Exchange)
	}
	if ch.key != "auction.bid" {
		t.Fatalf("routing key = %q, want auction.bid", ch.key)
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" {
		t.Fatalf("content type = %q", msg.ContentType)
	}

	var decoded event.Event
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded != evt {
		t.Fatalf("decoded = %+v, want %+v", decoded, evt)
	}
}

func TestPublishRequiresChannel(t *testing.T) {
	var publisher *Publisher
	if err := publisher.Publish(context.Background(), event.Event{}); err == nil {
		t.Fatal("expected error from nil publisher")
	}
}

func TestDeclareExchange(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &Publisher{ch: ch}
	if err := publisher.declareExchange(); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if !ch.declared || ch.exchange != Exchange {
		t.Fatalf("exchange not declared as %q", Exchange)
	}
}
