package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends JSON change events onto a durable queue. One publisher
// per queue; channels are cheap and owned by the publisher.
type Publisher struct {
	ch    *amqp.Channel
	queue string
	log   *zap.Logger
}

func NewPublisher(conn *amqp.Connection, queue string, log *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &Publisher{ch: ch, queue: queue, log: log}, nil
}

// PublishJSON marshals the payload and publishes it with persistent
// delivery. Failures are returned, never retried here; the consumer side
// owns redelivery semantics.
func (p *Publisher) PublishJSON(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	p.log.Sugar().Debugw("published change event", "queue", p.queue)
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
