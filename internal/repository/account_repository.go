package repository

import (
	"context"
	"database/sql"
)

// ownedTables are every table holding rows keyed by user_id.
var ownedTables = []string{
	workHoursTable.name,
	cpdTable.name,
	feedbackTable.name,
	reflectionsTable.name,
	appraisalsTable.name,
	calendarEventsTable.name,
	documentsTable.name,
}

// AccountRepo removes a user together with everything they own.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// Delete removes the user and all of their log rows in one transaction,
// so a failure part way leaves the account intact.
func (r *AccountRepo) Delete(ctx context.Context, userID int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	for _, t := range ownedTables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+t+" WHERE user_id = ?", userID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
