package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler processes one decoded subscription event.
type Handler func(ctx context.Context, ev SubscriptionChangedEvent) error

// StartSubscriptionConsumer connects to RabbitMQ, declares the
// subscription.changed queue and hands every message to handle.  It
// reconnects with backoff until ctx is cancelled, then returns ctx.Err().
// Messages that fail to decode or handle are rejected without requeue so a
// poison message cannot spin the consumer.
func StartSubscriptionConsumer(ctx context.Context, url string, handle Handler) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "subscription-consumer").Logger()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, handle, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handle Handler, logger zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(SubscriptionQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(SubscriptionQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, d.Body, handle); err != nil {
				logger.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(ctx context.Context, body []byte, handle Handler) error {
	var ev SubscriptionChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.UserID <= 0 {
		return fmt.Errorf("event %q has no user id", ev.EventID)
	}
	return handle(ctx, ev)
}

// LogSubscriptionChange is the default Handler: one audit line per change.
func LogSubscriptionChange(ctx context.Context, ev SubscriptionChangedEvent) error {
	e := zerolog.Ctx(ctx).Info().
		Str("event_id", ev.EventID).
		Str("event_type", ev.EventType).
		Int64("user_id", ev.UserID).
		Str("customer_id", ev.CustomerID).
		Str("tier", ev.SubscriptionTier).
		Str("status", ev.SubscriptionStatus)
	if ev.SubscriptionEndsAt != nil {
		e = e.Str("ends_at", *ev.SubscriptionEndsAt)
	}
	e.Msg("subscription changed")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
