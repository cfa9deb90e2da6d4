package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/revalidation-api/internal/codec"
)

// ErrMalformedEvent wraps payloads that are not a decodable event.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event types that change a subscription.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "invoice.payment_succeeded"
	EventPaymentFailed       = "invoice.payment_failed"
)

// Event is the envelope of a webhook delivery.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// eventObject covers the fields read from subscription and invoice objects.
type eventObject struct {
	ID               string            `json:"id"`
	Object           string            `json:"object"`
	Customer         expandable        `json:"customer"`
	Subscription     expandable        `json:"subscription"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
}

// expandable is an id that the provider may send either as a string or as
// the expanded object.
type expandable string

func (e *expandable) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*e = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = expandable(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*e = expandable(obj.ID)
	return nil
}

// ParseEvent decodes a webhook payload.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}
	return &ev, nil
}

// Change is the effect of one event on a user's subscription columns.
type Change struct {
	CustomerID string
	Columns    codec.LegacyPatch
}

// MapEvent translates ev into subscription column writes.  The second
// result is false for event types that do not touch subscriptions.
// Provider statuses are stored as sent, including ones such as
// "incomplete" that the application does not model.
func MapEvent(ev *Event) (*Change, bool, error) {
	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted,
		EventPaymentSucceeded, EventPaymentFailed:
	default:
		return nil, false, nil
	}

	var obj eventObject
	if err := json.Unmarshal(ev.Data.Object, &obj); err != nil {
		return nil, false, fmt.Errorf("%w: %s object: %v", ErrMalformedEvent, ev.Type, err)
	}
	cols := codec.LegacyPatch{}

	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		if obj.Status != "" {
			cols[codec.ColSubscriptionStatus] = obj.Status
		}
		if tier := obj.Metadata["tier"]; tier != "" {
			cols[codec.ColSubscriptionTier] = tier
		}
		if obj.CurrentPeriodEnd > 0 {
			cols[codec.ColSubscriptionEndDate] = time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		}
		if obj.ID != "" {
			cols[codec.ColStripeSubscriptionID] = obj.ID
		}
	case EventSubscriptionDeleted:
		cols[codec.ColSubscriptionStatus] = "cancelled"
		cols[codec.ColSubscriptionTier] = "free"
	case EventPaymentSucceeded:
		cols[codec.ColSubscriptionStatus] = "active"
	case EventPaymentFailed:
		cols[codec.ColSubscriptionStatus] = "past_due"
	}

	if len(cols) == 0 {
		return nil, false, nil
	}
	return &Change{CustomerID: string(obj.Customer), Columns: cols}, true, nil
}
