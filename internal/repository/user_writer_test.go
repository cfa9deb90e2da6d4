package repository

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

func TestFallbackWriterPrimaryPath(t *testing.T) {
	db := newTestDB(t)
	w := newTestWriter(t, db)
	id := insertLegacyUser(t, db, map[string]any{"subscription_tier": "free"})

	u, err := w.Update(context.Background(), fmt.Sprint(id), codec.LegacyPatch{
		codec.ColSubscriptionTier:   "premium",
		codec.ColSubscriptionStatus: "active",
	}, true)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "premium", u.SubscriptionTier)
	assert.Equal(t, "premium", rawColumn(t, db, id, "subscription_tier"))
}

func TestFallbackWriterStoresOutOfSetEnumVerbatim(t *testing.T) {
	db := newTestDB(t)
	w := newTestWriter(t, db)
	id := insertLegacyUser(t, db, nil)

	u, err := w.Update(context.Background(), big.NewInt(id), codec.LegacyPatch{
		codec.ColSubscriptionTier:   "trial",
		codec.ColSubscriptionStatus: "incomplete",
	}, true)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "trial", u.SubscriptionTier)
	assert.Equal(t, "incomplete", u.SubscriptionStatus)
	assert.Equal(t, "trial", rawColumn(t, db, id, "subscription_tier"))
	assert.Equal(t, "incomplete", rawColumn(t, db, id, "subscription_status"))
}

func TestFallbackWriterSymbolicStatusRowLoads(t *testing.T) {
	db := newTestDB(t)
	w := newTestWriter(t, db)
	id := insertLegacyUser(t, db, map[string]any{"status": "one", "block_user": "zero"})

	u, err := w.Update(context.Background(), float64(id), codec.LegacyPatch{codec.ColName: "Renamed"}, true)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, model.UserStatusActive, u.Status)
	assert.True(t, u.Blocked)
	assert.Equal(t, "one", rawColumn(t, db, id, "status"))
}

func TestFallbackWriterIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	w := newTestWriter(t, db)
	id := insertLegacyUser(t, db, nil)
	patch := codec.LegacyPatch{codec.ColSubscriptionTier: "trial"}

	first, err := w.Update(context.Background(), id, patch, true)
	require.NoError(t, err)
	second, err := w.Update(context.Background(), id, patch, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFallbackWriterWithoutReturnRow(t *testing.T) {
	db := newTestDB(t)
	w := newTestWriter(t, db)
	id := insertLegacyUser(t, db, nil)

	u, err := w.Update(context.Background(), id, codec.LegacyPatch{codec.ColStatus: "0"}, false)
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Equal(t, "0", rawColumn(t, db, id, "status"))
}

func TestFallbackWriterRejectsBadInput(t *testing.T) {
	w := NewFallbackWriter(&fakeStore{}, &fakeStore{})

	_, err := w.Update(context.Background(), "abc", codec.LegacyPatch{codec.ColName: "x"}, false)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = w.Update(context.Background(), 1, codec.LegacyPatch{}, false)
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestFallbackWriterNotFound(t *testing.T) {
	db := newTestDB(t)
	w := newTestWriter(t, db)

	_, err := w.Update(context.Background(), 999, codec.LegacyPatch{codec.ColName: "x"}, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeStore struct {
	updateErr error
	loadErr   error
	updates   int
	loads     int
}

func (f *fakeStore) UpdateColumns(context.Context, int64, codec.LegacyPatch) error {
	f.updates++
	return f.updateErr
}

func (f *fakeStore) LoadUser(_ context.Context, id int64) (*model.User, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &model.User{ID: id}, nil
}

func TestFallbackWriterPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection reset by peer")
	primary := &fakeStore{updateErr: boom}
	fallback := &fakeStore{}
	w := NewFallbackWriter(primary, fallback)

	_, err := w.Update(context.Background(), 7, codec.LegacyPatch{codec.ColName: "x"}, true)
	assert.Same(t, boom, err)
	assert.Equal(t, 1, primary.updates)
	assert.Zero(t, fallback.updates)
	assert.Zero(t, fallback.loads)
}

func TestFallbackWriterRetriesOnceOnMismatch(t *testing.T) {
	mismatch := fmt.Errorf("scan: %w", &EnumValueError{Type: "status", Value: "one"})
	primary := &fakeStore{loadErr: mismatch}
	fallback := &fakeStore{updateErr: gorm.ErrInvalidField}
	w := NewFallbackWriter(primary, fallback)

	_, err := w.Update(context.Background(), 7, codec.LegacyPatch{codec.ColName: "x"}, true)
	assert.ErrorIs(t, err, gorm.ErrInvalidField)
	assert.Equal(t, 1, primary.updates)
	assert.Equal(t, 1, fallback.updates)
}

func TestIsSchemaMismatch(t *testing.T) {
	assert.True(t, IsSchemaMismatch(&EnumValueError{Type: "status", Value: "one"}))
	assert.True(t, IsSchemaMismatch(fmt.Errorf("sql: Scan error: %w", &EnumValueError{})))
	assert.True(t, IsSchemaMismatch(gorm.ErrInvalidData))
	assert.True(t, IsSchemaMismatch(fmt.Errorf("wrapped: %w", gorm.ErrInvalidValue)))
	assert.False(t, IsSchemaMismatch(errors.New("invalid enum value")))
	assert.False(t, IsSchemaMismatch(gorm.ErrRecordNotFound))
	assert.False(t, IsSchemaMismatch(nil))
}

func TestRawUserStoreRejectsUnknownColumn(t *testing.T) {
	db := newTestDB(t)
	id := insertLegacyUser(t, db, nil)
	err := NewRawUserStore(db).UpdateColumns(context.Background(), id, codec.LegacyPatch{"id = 1; --": "x"})
	assert.ErrorIs(t, err, ErrBadRequest)
}
