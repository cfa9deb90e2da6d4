package repository

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/iliyamo/revalidation-api/internal/codec"
)

// EnumValueError reports a value outside the closed set a strict column
// type accepts.  It is raised both when binding a write and when scanning
// a stored row.
type EnumValueError struct {
	Type  string
	Value string
}

func (e *EnumValueError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Type, e.Value)
}

// enumString converts a driver value to text for the enum scanners.
func enumString(typ string, src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return fmt.Sprint(v), nil
	}
	return "", &EnumValueError{Type: typ, Value: fmt.Sprint(src)}
}

// StatusCode is the strict form of users.status and users.block_user.
type StatusCode string

func (s StatusCode) valid() bool { return s == "0" || s == "1" }

func (s StatusCode) Value() (driver.Value, error) {
	if !s.valid() {
		return nil, &EnumValueError{Type: "status", Value: string(s)}
	}
	return string(s), nil
}

func (s *StatusCode) Scan(src any) error {
	v, err := enumString("status", src)
	if err != nil {
		return err
	}
	if !StatusCode(v).valid() {
		return &EnumValueError{Type: "status", Value: v}
	}
	*s = StatusCode(v)
	return nil
}

// SubscriptionTier is the strict form of users.subscription_tier.
type SubscriptionTier string

var subscriptionTiers = map[SubscriptionTier]bool{"free": true, "basic": true, "premium": true}

func (t SubscriptionTier) Value() (driver.Value, error) {
	if !subscriptionTiers[t] {
		return nil, &EnumValueError{Type: "subscription_tier", Value: string(t)}
	}
	return string(t), nil
}

func (t *SubscriptionTier) Scan(src any) error {
	v, err := enumString("subscription_tier", src)
	if err != nil {
		return err
	}
	if !subscriptionTiers[SubscriptionTier(v)] {
		return &EnumValueError{Type: "subscription_tier", Value: v}
	}
	*t = SubscriptionTier(v)
	return nil
}

// SubscriptionStatus is the strict form of users.subscription_status.
type SubscriptionStatus string

var subscriptionStatuses = map[SubscriptionStatus]bool{
	"active": true, "inactive": true, "cancelled": true, "past_due": true, "trialing": true,
}

func (s SubscriptionStatus) Value() (driver.Value, error) {
	if !subscriptionStatuses[s] {
		return nil, &EnumValueError{Type: "subscription_status", Value: string(s)}
	}
	return string(s), nil
}

func (s *SubscriptionStatus) Scan(src any) error {
	v, err := enumString("subscription_status", src)
	if err != nil {
		return err
	}
	if !subscriptionStatuses[SubscriptionStatus(v)] {
		return &EnumValueError{Type: "subscription_status", Value: v}
	}
	*s = SubscriptionStatus(v)
	return nil
}

// UserRecord is the gorm model of the users table.  Its enum columns only
// accept the values the current product writes, so rows carrying older
// encodings ('one', 'zero', provider statuses) fail to load through it.
type UserRecord struct {
	ID                   int64               `gorm:"column:id;primaryKey"`
	Name                 *string             `gorm:"column:name"`
	Email                string              `gorm:"column:email"`
	Password             string              `gorm:"column:password"`
	Registration         *string             `gorm:"column:registration"`
	DueDate              *time.Time          `gorm:"column:due_date"`
	RegType              *string             `gorm:"column:reg_type"`
	Description          *string             `gorm:"column:description"`
	WorkSettings         *string             `gorm:"column:work_settings"`
	ScopePractice        *string             `gorm:"column:scope_practice"`
	Status               *StatusCode         `gorm:"column:status"`
	BlockUser            *StatusCode         `gorm:"column:block_user"`
	SubscriptionTier     *SubscriptionTier   `gorm:"column:subscription_tier"`
	SubscriptionStatus   *SubscriptionStatus `gorm:"column:subscription_status"`
	SubscriptionEndDate  *time.Time          `gorm:"column:subscription_end_date"`
	StripeCustomerID     *string             `gorm:"column:stripe_customer_id"`
	StripeSubscriptionID *string             `gorm:"column:stripe_subscription_id"`
	CreatedAt            *time.Time          `gorm:"column:created_at"`
	UpdatedAt            *time.Time          `gorm:"column:updated_at"`
}

func (UserRecord) TableName() string { return "users" }

// row flattens the record back into the column map the codec decodes.
func (r *UserRecord) row() map[string]any {
	row := map[string]any{
		codec.ColUserID:   r.ID,
		codec.ColEmail:    r.Email,
		codec.ColPassword: r.Password,
	}
	putString := func(col string, v *string) {
		if v != nil {
			row[col] = *v
		}
	}
	putTime := func(col string, v *time.Time) {
		if v != nil {
			row[col] = *v
		}
	}
	putString(codec.ColName, r.Name)
	putString(codec.ColRegistration, r.Registration)
	putTime(codec.ColDueDate, r.DueDate)
	putString(codec.ColRegType, r.RegType)
	putString(codec.ColDescription, r.Description)
	putString(codec.ColWorkSettings, r.WorkSettings)
	putString(codec.ColScopePractice, r.ScopePractice)
	if r.Status != nil {
		row[codec.ColStatus] = string(*r.Status)
	}
	if r.BlockUser != nil {
		row[codec.ColBlockUser] = string(*r.BlockUser)
	}
	if r.SubscriptionTier != nil {
		row[codec.ColSubscriptionTier] = string(*r.SubscriptionTier)
	}
	if r.SubscriptionStatus != nil {
		row[codec.ColSubscriptionStatus] = string(*r.SubscriptionStatus)
	}
	putTime(codec.ColSubscriptionEndDate, r.SubscriptionEndDate)
	putString(codec.ColStripeCustomerID, r.StripeCustomerID)
	putString(codec.ColStripeSubscriptionID, r.StripeSubscriptionID)
	putTime(codec.ColCreatedAt, r.CreatedAt)
	putTime(codec.ColUpdatedAt, r.UpdatedAt)
	return row
}

// strictValue converts a legacy column value to the strict type gorm binds
// for that column.  Values of other columns pass through unchanged.
func strictValue(col string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch col {
	case codec.ColStatus, codec.ColBlockUser:
		return StatusCode(s)
	case codec.ColSubscriptionTier:
		return SubscriptionTier(s)
	case codec.ColSubscriptionStatus:
		return SubscriptionStatus(s)
	}
	return v
}
