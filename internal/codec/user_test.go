package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/revalidation-api/internal/model"
)

func TestDecodeStatus(t *testing.T) {
	cases := []struct {
		in   any
		want model.UserStatus
	}{
		{"0", model.UserStatusInactive},
		{"zero", model.UserStatusInactive},
		{[]byte("zero"), model.UserStatusInactive},
		{"1", model.UserStatusActive},
		{"one", model.UserStatusActive},
		{"ONE", model.UserStatusActive},
		{[]byte("1"), model.UserStatusActive},
		{int64(1), model.UserStatusActive},
		{int64(0), model.UserStatusInactive},
		{nil, model.UserStatusInactive},
		{"pending", model.UserStatusInactive},
		{"", model.UserStatusInactive},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DecodeStatus(tc.in), "status %v", tc.in)
	}
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, IsBlocked("0"))
	assert.True(t, IsBlocked(int64(0)))
	assert.True(t, IsBlocked([]byte("0")))
	assert.True(t, IsBlocked("zero"))

	assert.False(t, IsBlocked("1"))
	assert.False(t, IsBlocked(int64(1)))
	assert.False(t, IsBlocked(nil))
	assert.False(t, IsBlocked(""))

	assert.Equal(t, "0", EncodeBlocked(true))
	assert.Equal(t, "1", EncodeBlocked(false))
}

func legacyRow() map[string]any {
	return map[string]any{
		"id":                     int64(42),
		"name":                   []byte("Ada Nurse"),
		"email":                  "ada@example.com",
		"password":               "$2y$10$abcdefghijklmnopqrstuv",
		"registration":           []byte("12A3456B"),
		"due_date":               time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"reg_type":               "nurse",
		"description":            nil,
		"work_settings":          int64(3),
		"scope_practice":         []byte("adult"),
		"status":                 "one",
		"block_user":             "1",
		"subscription_tier":      nil,
		"subscription_status":    "",
		"subscription_end_date":  nil,
		"stripe_customer_id":     nil,
		"stripe_subscription_id": nil,
		"created_at":             "2024-01-01 10:00:00",
		"updated_at":             "2024-01-02 10:00:00",
	}
}

func TestDecodeUserRow(t *testing.T) {
	u := DecodeUserRow(legacyRow())

	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "Ada Nurse", u.Name)
	require.NotNil(t, u.RegistrationNumber)
	assert.Equal(t, "12A3456B", *u.RegistrationNumber)
	require.NotNil(t, u.RevalidationDate)
	assert.Equal(t, "2026-03-01", u.RevalidationDate.Format("2006-01-02"))
	require.NotNil(t, u.ProfessionalRole)
	assert.Equal(t, "nurse", *u.ProfessionalRole)
	require.NotNil(t, u.WorkSetting)
	assert.Equal(t, "3", *u.WorkSetting)
	require.NotNil(t, u.ScopeOfPractice)
	assert.Equal(t, "adult", *u.ScopeOfPractice)
	assert.Equal(t, model.UserStatusActive, u.Status)
	assert.False(t, u.Blocked)
	assert.Equal(t, "free", u.SubscriptionTier)
	assert.Equal(t, "active", u.SubscriptionStatus)
	assert.Nil(t, u.SubscriptionEndDate)
	require.NotNil(t, u.CreatedAt)
	assert.Equal(t, 2024, u.CreatedAt.Year())
}

func TestDecodeUserRowIsDeterministic(t *testing.T) {
	row := legacyRow()
	row["description"] = `{"professionalRole":"midwife"}`
	assert.Equal(t, DecodeUserRow(row), DecodeUserRow(row))
}

func TestDecodeUserRowProfessionalRoleSources(t *testing.T) {
	t.Run("description blob wins", func(t *testing.T) {
		row := legacyRow()
		row["description"] = []byte(`{"professionalRole":"midwife","other":1}`)
		u := DecodeUserRow(row)
		require.NotNil(t, u.ProfessionalRole)
		assert.Equal(t, "midwife", *u.ProfessionalRole)
	})
	t.Run("empty role in blob falls back", func(t *testing.T) {
		row := legacyRow()
		row["description"] = `{"professionalRole":""}`
		u := DecodeUserRow(row)
		require.NotNil(t, u.ProfessionalRole)
		assert.Equal(t, "nurse", *u.ProfessionalRole)
	})
	t.Run("malformed JSON is absent", func(t *testing.T) {
		row := legacyRow()
		row["description"] = `{"professionalRole":`
		var u model.User
		assert.NotPanics(t, func() { u = DecodeUserRow(row) })
		require.NotNil(t, u.ProfessionalRole)
		assert.Equal(t, "nurse", *u.ProfessionalRole)
	})
	t.Run("plain text description", func(t *testing.T) {
		row := legacyRow()
		row["description"] = "Community nurse since 2010"
		u := DecodeUserRow(row)
		require.NotNil(t, u.ProfessionalRole)
		assert.Equal(t, "nurse", *u.ProfessionalRole)
	})
	t.Run("no source", func(t *testing.T) {
		row := legacyRow()
		row["reg_type"] = nil
		assert.Nil(t, DecodeUserRow(row).ProfessionalRole)
	})
}

func TestDecodeUserRowEmptyRow(t *testing.T) {
	u := DecodeUserRow(map[string]any{})
	assert.Equal(t, "", u.Name)
	assert.Equal(t, model.UserStatusInactive, u.Status)
	assert.False(t, u.Blocked)
	assert.Equal(t, model.DefaultSubscriptionTier, u.SubscriptionTier)
	assert.Equal(t, model.DefaultSubscriptionStatus, u.SubscriptionStatus)
	assert.Nil(t, u.RegistrationNumber)
	assert.Nil(t, u.WorkSetting)
}

func TestEncodeUserPatchOnlyPresentKeys(t *testing.T) {
	out, err := EncodeUserPatch(UserPatch{
		FieldName:               "New Name",
		FieldRegistrationNumber: nil,
		FieldStatus:             model.UserStatusActive,
		FieldBlocked:            true,
		"not_a_field":           "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, LegacyPatch{
		ColName:         "New Name",
		ColRegistration: nil,
		ColStatus:       "1",
		ColBlockUser:    "0",
	}, out)
	_, hasEmail := out[ColEmail]
	assert.False(t, hasEmail)
	assert.Equal(t, []string{ColBlockUser, ColName, ColRegistration, ColStatus}, out.Columns())
}

func TestEncodeUserPatchValues(t *testing.T) {
	out, err := EncodeUserPatch(UserPatch{
		FieldRevalidationDate: "2027-05-01",
		FieldWorkSetting:      float64(4),
		FieldStatus:           "zero",
		FieldProfessionalRole: "nurse",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC), out[ColDueDate])
	assert.Equal(t, "4", out[ColWorkSettings])
	assert.Equal(t, "0", out[ColStatus])
	assert.Equal(t, "nurse", out[ColRegType])
}

func TestEncodeUserPatchRejectsBadValues(t *testing.T) {
	_, err := EncodeUserPatch(UserPatch{FieldRevalidationDate: "next spring"})
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, FieldRevalidationDate, encErr.Field)

	_, err = EncodeUserPatch(UserPatch{FieldBlocked: "yes"})
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, FieldBlocked, encErr.Field)

	_, err = EncodeUserPatch(UserPatch{FieldStatus: "pending"})
	require.ErrorAs(t, err, &encErr)
}

// apply writes a legacy patch over a copy of row, the way an UPDATE would.
func apply(row map[string]any, patch LegacyPatch) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func TestUserRoundTrip(t *testing.T) {
	row := legacyRow()
	before := DecodeUserRow(row)

	patch := UserPatch{
		FieldName:             before.Name,
		FieldRevalidationDate: before.RevalidationDate,
		FieldStatus:           before.Status,
		FieldBlocked:          before.Blocked,
		FieldWorkSetting:      before.WorkSetting,
	}
	legacy, err := EncodeUserPatch(patch)
	require.NoError(t, err)

	after := DecodeUserRow(apply(row, legacy))
	assert.Equal(t, before, after)

	// Symbolic status is rewritten numerically but decodes the same.
	assert.Equal(t, "1", legacy[ColStatus])
}

func TestUserRoundTripPartialPatchLeavesOtherColumns(t *testing.T) {
	row := legacyRow()
	row["subscription_tier"] = "premium"

	legacy, err := EncodeUserPatch(UserPatch{FieldName: "Renamed"})
	require.NoError(t, err)
	after := DecodeUserRow(apply(row, legacy))

	before := DecodeUserRow(row)
	assert.Equal(t, "Renamed", after.Name)
	after.Name = before.Name
	assert.Equal(t, before, after)
}

func TestMergeProfessionalRole(t *testing.T) {
	role := "midwife"
	out, ok := MergeProfessionalRole(`{"professionalRole":"nurse","bio":"x"}`, &role)
	require.True(t, ok)
	assert.JSONEq(t, `{"professionalRole":"midwife","bio":"x"}`, *out)

	out, ok = MergeProfessionalRole(`{"professionalRole":"nurse"}`, nil)
	require.True(t, ok)
	assert.JSONEq(t, `{}`, *out)

	_, ok = MergeProfessionalRole(`{"bio":"x"}`, &role)
	assert.False(t, ok)
	_, ok = MergeProfessionalRole("plain text", &role)
	assert.False(t, ok)
	_, ok = MergeProfessionalRole(nil, &role)
	assert.False(t, ok)
}
