package codec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/revalidation-api/internal/model"
)

// Legacy column names of the `users` table.
const (
	ColUserID               = "id"
	ColName                 = "name"
	ColEmail                = "email"
	ColPassword             = "password"
	ColRegistration         = "registration"
	ColDueDate              = "due_date"
	ColRegType              = "reg_type"
	ColDescription          = "description"
	ColWorkSettings         = "work_settings"
	ColScopePractice        = "scope_practice"
	ColStatus               = "status"
	ColBlockUser            = "block_user"
	ColSubscriptionTier     = "subscription_tier"
	ColSubscriptionStatus   = "subscription_status"
	ColSubscriptionEndDate  = "subscription_end_date"
	ColStripeCustomerID     = "stripe_customer_id"
	ColStripeSubscriptionID = "stripe_subscription_id"
	ColCreatedAt            = "created_at"
	ColUpdatedAt            = "updated_at"
)

// userColumns is the set of users columns this service may write.
var userColumns = map[string]bool{
	ColName: true, ColEmail: true, ColPassword: true, ColRegistration: true,
	ColDueDate: true, ColRegType: true, ColDescription: true, ColWorkSettings: true,
	ColScopePractice: true, ColStatus: true, ColBlockUser: true,
	ColSubscriptionTier: true, ColSubscriptionStatus: true, ColSubscriptionEndDate: true,
	ColStripeCustomerID: true, ColStripeSubscriptionID: true,
	ColCreatedAt: true, ColUpdatedAt: true,
}

// IsUserColumn reports whether col is a writable legacy users column.
func IsUserColumn(col string) bool { return userColumns[col] }

// descriptionRoleKey is the key some rows carry inside the JSON blob stored
// in users.description.
const descriptionRoleKey = "professionalRole"

// statusTable decodes both encodings found in users.status.
var statusTable = map[string]model.UserStatus{
	"0":    model.UserStatusInactive,
	"zero": model.UserStatusInactive,
	"1":    model.UserStatusActive,
	"one":  model.UserStatusActive,
}

// DecodeStatus maps a raw users.status value to a UserStatus.  Unknown and
// NULL values decode as inactive.
func DecodeStatus(v any) model.UserStatus {
	s, ok := asString(v)
	if !ok {
		return model.UserStatusInactive
	}
	if st, ok := statusTable[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	return model.UserStatusInactive
}

// EncodeStatus returns the value written to users.status.
func EncodeStatus(st model.UserStatus) string {
	if st == model.UserStatusActive {
		return "1"
	}
	return "0"
}

// IsBlocked decodes users.block_user, whose polarity is inverted: '0'
// (or 'zero') means the account is blocked.  NULL means not blocked.
func IsBlocked(v any) bool {
	s, ok := asString(v)
	if !ok {
		return false
	}
	st, known := statusTable[strings.ToLower(strings.TrimSpace(s))]
	return known && st == model.UserStatusInactive
}

// EncodeBlocked returns the value written to users.block_user.
func EncodeBlocked(blocked bool) string {
	if blocked {
		return "0"
	}
	return "1"
}

func isStatusCode(s string) bool {
	_, ok := statusTable[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// DecodeUserRow maps a raw users row to the application User.
func DecodeUserRow(row map[string]any) model.User {
	u := model.User{
		SubscriptionTier:   model.DefaultSubscriptionTier,
		SubscriptionStatus: model.DefaultSubscriptionStatus,
	}
	if id, ok := asInt64(row[ColUserID]); ok {
		u.ID = id
	}
	u.Name, _ = asString(row[ColName])
	u.Email, _ = asString(row[ColEmail])
	u.PasswordHash, _ = asString(row[ColPassword])
	u.RegistrationNumber = asStringPtr(row[ColRegistration])
	u.RevalidationDate = asTime(row[ColDueDate])
	u.ProfessionalRole = professionalRole(u.ID, row[ColDescription], row[ColRegType])
	u.WorkSetting = asStringPtr(row[ColWorkSettings])
	u.ScopeOfPractice = asStringPtr(row[ColScopePractice])
	u.Status = DecodeStatus(row[ColStatus])
	u.Blocked = IsBlocked(row[ColBlockUser])
	if s, ok := asString(row[ColSubscriptionTier]); ok && strings.TrimSpace(s) != "" {
		u.SubscriptionTier = s
	}
	if s, ok := asString(row[ColSubscriptionStatus]); ok && strings.TrimSpace(s) != "" {
		u.SubscriptionStatus = s
	}
	u.SubscriptionEndDate = asTime(row[ColSubscriptionEndDate])
	u.StripeCustomerID = asStringPtr(row[ColStripeCustomerID])
	u.StripeSubscriptionID = asStringPtr(row[ColStripeSubscriptionID])
	u.CreatedAt = asTime(row[ColCreatedAt])
	u.UpdatedAt = asTime(row[ColUpdatedAt])
	return u
}

// professionalRole prefers the professionalRole key of the JSON blob in
// users.description and falls back to users.reg_type.
func professionalRole(userID int64, description, regType any) *string {
	if blob, ok := descriptionObject(userID, description); ok {
		if role, ok := blob[descriptionRoleKey].(string); ok && strings.TrimSpace(role) != "" {
			return &role
		}
	}
	return asStringPtr(regType)
}

// descriptionObject parses users.description when it holds a JSON object.
// Plain text is not JSON and is ignored; text that starts like an object
// but fails to parse is logged and treated as absent.
func descriptionObject(userID int64, description any) (map[string]any, bool) {
	s, ok := asString(description)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var blob map[string]any
	if err := json.Unmarshal([]byte(s), &blob); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("users.description holds malformed JSON; ignoring")
		return nil, false
	}
	return blob, true
}

// MergeProfessionalRole rewrites the professionalRole key of a description
// blob that already carries one, so a role change is not shadowed by the
// stale JSON value.  It returns false when the description does not use
// the convention and should be left alone.
func MergeProfessionalRole(description any, role *string) (*string, bool) {
	blob, ok := descriptionObject(0, description)
	if !ok {
		return nil, false
	}
	if _, has := blob[descriptionRoleKey]; !has {
		return nil, false
	}
	if role == nil {
		delete(blob, descriptionRoleKey)
	} else {
		blob[descriptionRoleKey] = *role
	}
	out, err := json.Marshal(blob)
	if err != nil {
		return nil, false
	}
	s := string(out)
	return &s, true
}

// Canonical field names accepted in a UserPatch.
const (
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPasswordHash         = "password_hash"
	FieldRegistrationNumber   = "registration_number"
	FieldRevalidationDate     = "revalidation_date"
	FieldProfessionalRole     = "professional_role"
	FieldWorkSetting          = "work_setting"
	FieldScopeOfPractice      = "scope_of_practice"
	FieldStatus               = "status"
	FieldBlocked              = "blocked"
	FieldSubscriptionTier     = "subscription_tier"
	FieldSubscriptionStatus   = "subscription_status"
	FieldSubscriptionEndDate  = "subscription_end_date"
	FieldStripeCustomerID     = "stripe_customer_id"
	FieldStripeSubscriptionID = "stripe_subscription_id"
)

// UserPatch is a partial update keyed by canonical field name.  A key that
// is present with a nil value clears the column; a key that is absent is
// not written.
type UserPatch map[string]any

// LegacyPatch is a partial update keyed by legacy users column.
type LegacyPatch map[string]any

// Columns returns the patch columns in a stable order.
func (p LegacyPatch) Columns() []string {
	cols := make([]string, 0, len(p))
	for c := range p {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// EncodeError reports a patch value that cannot be stored.
type EncodeError struct {
	Field  string
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

type fieldEncoder struct {
	column string
	encode func(any) (any, error)
}

var userFields = map[string]fieldEncoder{
	FieldName:                 {ColName, encodeText},
	FieldEmail:                {ColEmail, encodeText},
	FieldPasswordHash:         {ColPassword, encodeText},
	FieldRegistrationNumber:   {ColRegistration, encodeText},
	FieldRevalidationDate:     {ColDueDate, encodeDate},
	FieldProfessionalRole:     {ColRegType, encodeText},
	FieldWorkSetting:          {ColWorkSettings, encodeText},
	FieldScopeOfPractice:      {ColScopePractice, encodeText},
	FieldStatus:               {ColStatus, encodeStatus},
	FieldBlocked:              {ColBlockUser, encodeBlocked},
	FieldSubscriptionTier:     {ColSubscriptionTier, encodeText},
	FieldSubscriptionStatus:   {ColSubscriptionStatus, encodeText},
	FieldSubscriptionEndDate:  {ColSubscriptionEndDate, encodeDate},
	FieldStripeCustomerID:     {ColStripeCustomerID, encodeText},
	FieldStripeSubscriptionID: {ColStripeSubscriptionID, encodeText},
}

// IsUserField reports whether name is a canonical UserPatch field.
func IsUserField(name string) bool {
	_, ok := userFields[name]
	return ok
}

// EncodeUserPatch maps a canonical partial update to legacy columns.  Only
// keys present in patch are emitted.  Unknown keys are ignored.
func EncodeUserPatch(patch UserPatch) (LegacyPatch, error) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(LegacyPatch, len(patch))
	for _, k := range keys {
		enc, ok := userFields[k]
		if !ok {
			continue
		}
		v, err := enc.encode(patch[k])
		if err != nil {
			return nil, &EncodeError{Field: k, Reason: err.Error()}
		}
		out[enc.column] = v
	}
	return out, nil
}

func encodeText(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *string:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case json.Number:
		return t.String(), nil
	case string, []byte, int, int64, float64:
		s, _ := asString(t)
		return s, nil
	}
	return nil, fmt.Errorf("expected text, got %T", v)
}

func encodeDate(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.UTC(), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		if p := parseTime(t); p != nil {
			return *p, nil
		}
		return nil, fmt.Errorf("unrecognised date %q", t)
	}
	return nil, fmt.Errorf("expected date, got %T", v)
}

func encodeStatus(v any) (any, error) {
	switch t := v.(type) {
	case model.UserStatus:
		return EncodeStatus(t), nil
	case bool:
		if t {
			return EncodeStatus(model.UserStatusActive), nil
		}
		return EncodeStatus(model.UserStatusInactive), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case string(model.UserStatusActive):
			return EncodeStatus(model.UserStatusActive), nil
		case string(model.UserStatusInactive):
			return EncodeStatus(model.UserStatusInactive), nil
		}
		if isStatusCode(t) {
			return EncodeStatus(DecodeStatus(t)), nil
		}
	}
	return nil, fmt.Errorf("expected active or inactive, got %v", v)
}

func encodeBlocked(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %T", v)
	}
	return EncodeBlocked(b), nil
}
