package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
	"github.com/iliyamo/revalidation-api/internal/queue"
	"github.com/iliyamo/revalidation-api/internal/repository"
)

// CustomerLookup finds the user linked to a provider customer id.
type CustomerLookup interface {
	GetByStripeCustomer(ctx context.Context, customerID string) (*model.User, error)
}

// UserWriter applies legacy column writes to a user.
type UserWriter interface {
	Update(ctx context.Context, id any, cols codec.LegacyPatch, returnRow bool) (*model.User, error)
}

// EventPublisher announces applied subscription changes.
type EventPublisher interface {
	PublishSubscriptionChanged(ctx context.Context, ev queue.SubscriptionChangedEvent) error
}

// Outcome reports what happened to one delivery.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Processor verifies, dedupes and applies webhook deliveries.
type Processor struct {
	Secret    string
	Tolerance time.Duration
	Users     CustomerLookup
	Writer    UserWriter
	Dedupe    *Deduper
	Publisher EventPublisher // optional
	Now       func() time.Time
}

// Handle processes one raw delivery.  Signature problems and malformed
// payloads are returned as errors; unknown customers and event types are
// logged and reported as ignored.
func (p *Processor) Handle(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	logger := zerolog.Ctx(ctx)
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	tolerance := p.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	if err := VerifySignature(payload, signature, p.Secret, now, tolerance); err != nil {
		return "", err
	}
	ev, err := ParseEvent(payload)
	if err != nil {
		return "", err
	}
	change, ok, err := MapEvent(ev)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.Info().Str("event_id", ev.ID).Str("type", ev.Type).Msg("webhook event ignored")
		return OutcomeIgnored, nil
	}
	if change.CustomerID == "" {
		logger.Warn().Str("event_id", ev.ID).Str("type", ev.Type).Msg("webhook event without customer")
		return OutcomeIgnored, nil
	}

	fresh, err := p.Dedupe.Claim(ctx, ev.ID)
	if err != nil {
		// dedupe is best effort; a Redis outage must not drop deliveries
		logger.Warn().Err(err).Str("event_id", ev.ID).Msg("webhook dedupe unavailable")
		fresh = true
	}
	if !fresh {
		logger.Info().Str("event_id", ev.ID).Msg("webhook event already processed")
		return OutcomeDuplicate, nil
	}

	u, err := p.apply(ctx, ev, change)
	if err != nil {
		if rerr := p.Dedupe.Release(ctx, ev.ID); rerr != nil {
			logger.Warn().Err(rerr).Str("event_id", ev.ID).Msg("webhook dedupe release failed")
		}
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Str("event_id", ev.ID).Str("customer", change.CustomerID).Msg("webhook for unknown customer")
			return OutcomeIgnored, nil
		}
		return "", err
	}

	logger.Info().
		Str("event_id", ev.ID).
		Str("type", ev.Type).
		Int64("user_id", u.ID).
		Str("status", u.SubscriptionStatus).
		Str("tier", u.SubscriptionTier).
		Msg("subscription updated")
	p.publish(ctx, ev, change, u, now)
	return OutcomeApplied, nil
}

func (p *Processor) apply(ctx context.Context, ev *Event, change *Change) (*model.User, error) {
	u, err := p.Users.GetByStripeCustomer(ctx, change.CustomerID)
	if err != nil {
		return nil, err
	}
	cols := make(codec.LegacyPatch, len(change.Columns)+1)
	for k, v := range change.Columns {
		cols[k] = v
	}
	cols[codec.ColUpdatedAt] = time.Now().UTC().Truncate(time.Second)

	updated, err := p.Writer.Update(ctx, u.ID, cols, true)
	if err != nil {
		return nil, fmt.Errorf("apply %s to user %d: %w", ev.Type, u.ID, err)
	}
	return updated, nil
}

func (p *Processor) publish(ctx context.Context, ev *Event, change *Change, u *model.User, now time.Time) {
	if p.Publisher == nil {
		return
	}
	msg := queue.SubscriptionChangedEvent{
		EventID:            ev.ID,
		EventType:          ev.Type,
		UserID:             u.ID,
		CustomerID:         change.CustomerID,
		SubscriptionTier:   u.SubscriptionTier,
		SubscriptionStatus: u.SubscriptionStatus,
		ChangedAt:          now.UTC().Format(time.RFC3339),
	}
	if u.SubscriptionEndDate != nil {
		s := u.SubscriptionEndDate.UTC().Format(time.RFC3339)
		msg.SubscriptionEndsAt = &s
	}
	if err := p.Publisher.PublishSubscriptionChanged(ctx, msg); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event_id", ev.ID).Msg("publish subscription change failed")
	}
}
