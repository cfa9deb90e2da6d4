// Package queue defines message payloads exchanged over the message broker.
package queue

// SubscriptionQueue is the durable queue subscription changes are published to.
const SubscriptionQueue = "subscription.changed"

// SubscriptionChangedEvent is published after a billing webhook has been
// applied to a user.  It carries the resulting subscription state so
// consumers can notify or audit without querying the users table.
type SubscriptionChangedEvent struct {
	EventID            string  `json:"event_id"`
	EventType          string  `json:"event_type"`
	UserID             int64   `json:"user_id"`
	CustomerID         string  `json:"customer_id"`
	SubscriptionTier   string  `json:"subscription_tier"`
	SubscriptionStatus string  `json:"subscription_status"`
	SubscriptionEndsAt *string `json:"subscription_ends_at,omitempty"`
	ChangedAt          string  `json:"changed_at"`
}
