package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const floorEventsQueue = "floor.events"

// FloorEvent is the message published for every processed outbox row.
type FloorEvent struct {
	Event      string      `json:"event"`
	Entity     string      `json:"entity"`
	RecordID   int64       `json:"record_id"`
	Action     string      `json:"action"`
	Data       interface{} `json:"data,omitempty"`
	OccurredAt string      `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event FloorEvent) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, FloorEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// AMQPPublisher publishes FloorEvents as persistent JSON messages to the
// durable floor.events queue. The connection is dialled lazily and redialled
// after the broker drops it.
type AMQPPublisher struct {
	URL   string
	Queue string

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewEventPublisher returns a no-op publisher when url is empty.
func NewEventPublisher(url string) EventPublisher {
	if url == "" {
		return NoopPublisher{}
	}
	return &AMQPPublisher{URL: url, Queue: floorEventsQueue}
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event FloorEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal floor event: %w", err)
	}

	return ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
