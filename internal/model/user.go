package model

import "time"

// UserStatus is the verification state of an account.  The legacy
// `users.status` column stores it as '0'/'1' or 'zero'/'one'; the codec
// package owns that mapping and everything above it sees only these two
// values.
type UserStatus string

const (
	UserStatusInactive UserStatus = "inactive"
	UserStatusActive   UserStatus = "active"
)

// Default subscription values used when the legacy columns are NULL or
// empty.
const (
	DefaultSubscriptionTier   = "free"
	DefaultSubscriptionStatus = "active"
)

// User is the application view of a row in the legacy `users` table.
// Field names here are canonical; the legacy column names they come from
// are listed next to each field.
//
// Fields:
//  ID                   – users.id
//  Name                 – users.name
//  Email                – users.email
//  PasswordHash         – users.password (bcrypt, never serialised)
//  RegistrationNumber   – users.registration
//  RevalidationDate     – users.due_date
//  ProfessionalRole     – users.description JSON "professionalRole", else users.reg_type
//  WorkSetting          – users.work_settings (int or string in legacy rows)
//  ScopeOfPractice      – users.scope_practice (int or string in legacy rows)
//  Status               – users.status
//  Blocked              – users.block_user ('0' means blocked)
//  SubscriptionTier     – users.subscription_tier
//  SubscriptionStatus   – users.subscription_status
type User struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	RegistrationNumber   *string    `json:"registrationNumber"`
	RevalidationDate     *time.Time `json:"revalidationDate"`
	ProfessionalRole     *string    `json:"professionalRole"`
	WorkSetting          *string    `json:"workSetting"`
	ScopeOfPractice      *string    `json:"scopeOfPractice"`
	Status               UserStatus `json:"status"`
	Blocked              bool       `json:"blocked"`
	SubscriptionTier     string     `json:"subscriptionTier"`
	SubscriptionStatus   string     `json:"subscriptionStatus"`
	SubscriptionEndDate  *time.Time `json:"subscriptionEndDate"`
	StripeCustomerID     *string    `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId,omitempty"`
	CreatedAt            *time.Time `json:"createdAt"`
	UpdatedAt            *time.Time `json:"updatedAt"`
}

// IsActive reports whether the account has been verified.
func (u User) IsActive() bool { return u.Status == UserStatusActive }
