// Package events announces committed reservation transitions on RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/tripline/internal/reservation"
)

const DefaultQueue = "reservation.events"

type message struct {
	Type          reservation.EventType `json:"type"`
	ReservationID *uuid.UUID            `json:"reservation_id"`
	RequestID     *uuid.UUID            `json:"request_id"`
	TripID        string                `json:"trip_id"`
	Seats         int                   `json:"seats"`
	ActorID       string                `json:"actor_id"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// Encode renders e as the JSON body published for it.
func Encode(e reservation.Event) ([]byte, error) {
	return json.Marshal(message{
		Type:          e.Type,
		ReservationID: e.ReservationID,
		RequestID:     e.RequestID,
		TripID:        e.TripID.String(),
		Seats:         e.Seats,
		ActorID:       e.ActorID,
		OccurredAt:    e.OccurredAt.UTC(),
	})
}

// Publisher writes persistent messages to one durable queue. A channel is
// not safe for concurrent publishes, so Publish serializes on mu.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

var _ reservation.Publisher = (*Publisher)(nil)

func Dial(url, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declaring queue %s: %w", queue, err)
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, e reservation.Event) error {
	body, err := Encode(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt.UTC(),
		Type:         string(e.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", e.Type, err)
	}

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil && !p.conn.IsClosed() {
		_ = p.conn.Close()
		return err
	}

	return p.conn.Close()
}
