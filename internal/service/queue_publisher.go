// Package service holds outbound integrations used by request handlers.
// Publishing errors are logged and returned so callers can treat them as
// best effort without interrupting the request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	q "github.com/iliyamo/revalidation-api/internal/queue"
)

// QueuePublisher publishes domain events to RabbitMQ.  Each publish opens a
// short-lived connection; event volume is a handful per subscription change.
type QueuePublisher struct {
	URL string
}

func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{URL: url}
}

// PublishSubscriptionChanged publishes event to the subscription.changed
// queue as a persistent JSON message.
func (p *QueuePublisher) PublishSubscriptionChanged(ctx context.Context, event q.SubscriptionChangedEvent) error {
	logger := zerolog.Ctx(ctx)
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}
	if err := p.publish(ctx, q.SubscriptionQueue, body); err != nil {
		logger.Warn().Err(err).Str("queue", q.SubscriptionQueue).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

func (p *QueuePublisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
