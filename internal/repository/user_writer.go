package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

// UserStore writes a set of legacy columns to one users row and reads the
// row back.
type UserStore interface {
	UpdateColumns(ctx context.Context, id int64, cols codec.LegacyPatch) error
	LoadUser(ctx context.Context, id int64) (*model.User, error)
}

// GormUserStore goes through gorm and the strict UserRecord model.
type GormUserStore struct{ db *gorm.DB }

func NewGormUserStore(db *gorm.DB) *GormUserStore { return &GormUserStore{db: db} }

func (s *GormUserStore) UpdateColumns(ctx context.Context, id int64, cols codec.LegacyPatch) error {
	values := make(map[string]any, len(cols))
	for _, c := range cols.Columns() {
		v := strictValue(c, cols[c])
		// bind eagerly so an out-of-set enum surfaces as *EnumValueError
		// rather than a driver conversion message
		if valuer, ok := v.(driver.Valuer); ok {
			if _, err := valuer.Value(); err != nil {
				return err
			}
		}
		values[c] = v
	}
	return s.db.WithContext(ctx).Table("users").Where("id = ?", id).Updates(values).Error
}

func (s *GormUserStore) LoadUser(ctx context.Context, id int64) (*model.User, error) {
	var rec UserRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u := codec.DecodeUserRow(rec.row())
	return &u, nil
}

// RawUserStore issues plain parameterised SQL and decodes through the
// Row Codec, so it accepts whatever the legacy columns hold.
type RawUserStore struct{ db *sql.DB }

func NewRawUserStore(db *sql.DB) *RawUserStore { return &RawUserStore{db: db} }

func (s *RawUserStore) UpdateColumns(ctx context.Context, id int64, cols codec.LegacyPatch) error {
	for c := range cols {
		if !codec.IsUserColumn(c) {
			return fmt.Errorf("%w: unknown users column %q", ErrBadRequest, c)
		}
	}
	set, args := setClause(cols)
	_, err := s.db.ExecContext(ctx, "UPDATE users SET "+set+" WHERE id = ?", append(args, id)...)
	return err
}

func (s *RawUserStore) LoadUser(ctx context.Context, id int64) (*model.User, error) {
	row, err := queryRow(ctx, s.db, "SELECT * FROM users WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	u := codec.DecodeUserRow(row)
	return &u, nil
}

// IsSchemaMismatch reports whether err comes from the strict model
// rejecting legacy data: an enum value outside its set, or gorm refusing
// the update's data shape.
func IsSchemaMismatch(err error) bool {
	var enumErr *EnumValueError
	if errors.As(err, &enumErr) {
		return true
	}
	return errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidValue)
}

// FallbackWriter updates users columns through the primary store and, when
// the primary rejects the legacy data, repeats the same write once through
// the raw store.
type FallbackWriter struct {
	primary  UserStore
	fallback UserStore
}

func NewFallbackWriter(primary, fallback UserStore) *FallbackWriter {
	return &FallbackWriter{primary: primary, fallback: fallback}
}

// Update writes cols to the user identified by id (any integer-like
// value).  The updated user is returned when returnRow is set.
func (w *FallbackWriter) Update(ctx context.Context, id any, cols codec.LegacyPatch, returnRow bool) (*model.User, error) {
	uid, err := codec.ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if len(cols) == 0 {
		return nil, ErrEmptyPatch
	}

	u, err := write(ctx, w.primary, uid, cols, returnRow)
	if err == nil || !IsSchemaMismatch(err) {
		return u, err
	}
	log.Warn().Err(err).Int64("user_id", uid).Strs("columns", cols.Columns()).
		Msg("strict users model rejected legacy data; retrying with raw SQL")
	return write(ctx, w.fallback, uid, cols, returnRow)
}

func write(ctx context.Context, s UserStore, id int64, cols codec.LegacyPatch, returnRow bool) (*model.User, error) {
	if err := s.UpdateColumns(ctx, id, cols); err != nil {
		return nil, err
	}
	if !returnRow {
		return nil, nil
	}
	return s.LoadUser(ctx, id)
}
