package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
	"github.com/iliyamo/revalidation-api/internal/utils"
)

// mysqlDuplicateEntry is the server error number for a unique key clash.
const mysqlDuplicateEntry = 1062

// NewUser is the input of UserRepo.Create.
type NewUser struct {
	Name               string
	Email              string
	Password           string
	RegistrationNumber *string
	ProfessionalRole   *string
}

// UserRepo reads users with raw SQL and writes profile changes through the
// FallbackWriter.
type UserRepo struct {
	db     *sql.DB
	writer *FallbackWriter
}

func NewUserRepo(db *sql.DB, writer *FallbackWriter) *UserRepo {
	return &UserRepo{db: db, writer: writer}
}

// Writer exposes the FallbackWriter for callers that patch subscription
// columns directly.
func (r *UserRepo) Writer() *FallbackWriter { return r.writer }

func (r *UserRepo) getBy(ctx context.Context, col string, v any) (*model.User, error) {
	row, err := queryRow(ctx, r.db, "SELECT * FROM users WHERE "+col+" = ? LIMIT 1", v)
	if err != nil {
		return nil, err
	}
	u := codec.DecodeUserRow(row)
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, codec.ColEmail, normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getBy(ctx, codec.ColUserID, id)
}

// GetByStripeCustomer fetches the user linked to a billing customer id.
func (r *UserRepo) GetByStripeCustomer(ctx context.Context, customerID string) (*model.User, error) {
	return r.getBy(ctx, codec.ColStripeCustomerID, customerID)
}

// Create hashes the password and inserts the user.  New accounts start
// unverified, unblocked and on the free tier.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if in.RegistrationNumber != nil {
		if err := r.RegistrationTaken(ctx, *in.RegistrationNumber, 0); err != nil {
			return nil, err
		}
	}
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	now := nowUTC()
	row := map[string]any{
		codec.ColName:               strings.TrimSpace(in.Name),
		codec.ColEmail:              email,
		codec.ColPassword:           hash,
		codec.ColStatus:             codec.EncodeStatus(model.UserStatusInactive),
		codec.ColBlockUser:          codec.EncodeBlocked(false),
		codec.ColSubscriptionTier:   model.DefaultSubscriptionTier,
		codec.ColSubscriptionStatus: model.DefaultSubscriptionStatus,
		codec.ColCreatedAt:          now,
		codec.ColUpdatedAt:          now,
	}
	if in.RegistrationNumber != nil {
		row[codec.ColRegistration] = *in.RegistrationNumber
	}
	if in.ProfessionalRole != nil {
		row[codec.ColRegType] = *in.ProfessionalRole
	}
	cols, marks, args := insertClause(row)
	res, err := r.db.ExecContext(ctx, "INSERT INTO users ("+cols+") VALUES ("+marks+")", args...)
	if err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// RegistrationTaken returns ErrConflict when a verified user other than
// excludeID already holds the registration number.
func (r *UserRepo) RegistrationTaken(ctx context.Context, registration string, excludeID int64) error {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return nil
	}
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE registration = ? AND id <> ? AND LOWER(status) IN ('1', 'one')",
		registration, excludeID).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: registration number already in use", ErrConflict)
	}
	return nil
}

// UpdateProfile applies a canonical patch to the user.  A role change is
// also written into the description blob when the row keeps its role
// there, otherwise the blob would keep shadowing reg_type.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, patch codec.UserPatch) (*model.User, error) {
	if len(patch) == 0 {
		return nil, ErrEmptyPatch
	}
	if reg, ok := patch[codec.FieldRegistrationNumber].(string); ok {
		if err := r.RegistrationTaken(ctx, reg, id); err != nil {
			return nil, err
		}
	}
	cols, err := codec.EncodeUserPatch(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if role, ok := patch[codec.FieldProfessionalRole]; ok {
		var description any
		err := r.db.QueryRowContext(ctx, "SELECT description FROM users WHERE id = ?", id).Scan(&description)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		var rolePtr *string
		if s, ok := cols[codec.ColRegType].(string); ok && role != nil {
			rolePtr = &s
		}
		if merged, ok := codec.MergeProfessionalRole(description, rolePtr); ok {
			cols[codec.ColDescription] = *merged
		}
	}
	cols[codec.ColUpdatedAt] = nowUTC()
	return r.writer.Update(ctx, id, cols, true)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
