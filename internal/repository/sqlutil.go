package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/revalidation-api/internal/model"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nowUTC is the timestamp written to created_at/updated_at.  MySQL DATETIME
// keeps whole seconds, so the value is truncated before it is bound.
var nowUTC = func() time.Time { return time.Now().UTC().Truncate(time.Second) }

// scanMaps reads every row into a column-name keyed map.  Values are the
// raw driver values; []byte is copied because the driver reuses it.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				vals[i] = append([]byte(nil), b...)
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// queryRow runs a query expected to return at most one row.
func queryRow(ctx context.Context, q querier, query string, args ...any) (map[string]any, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	list, err := scanMaps(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

// setClause renders "a = ?, b = ?" for the sorted columns of patch and
// returns the matching arguments.
func setClause(patch map[string]any) (string, []any) {
	cols := make([]string, 0, len(patch))
	for c := range patch {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = c + " = ?"
		args[i] = patch[c]
	}
	return strings.Join(parts, ", "), args
}

// insertClause renders the column list and placeholders for an INSERT.
func insertClause(row map[string]any) (string, string, []any) {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		marks[i] = "?"
		args[i] = row[c]
	}
	return strings.Join(cols, ", "), strings.Join(marks, ", "), args
}

// table describes one log table for the shared CRUD helpers.  The type
// filter compares typeColumn for equality unless typeCondition is set, in
// which case it builds the predicate for the requested type.
type table struct {
	name          string
	dateColumn    string
	typeColumn    string
	typeCondition func(value string) (string, []any)
}

// logStore implements the owner-scoped CRUD statements every log table
// shares.  The typed repositories sit on top of it and translate between
// rows and model values.
type logStore struct {
	db *sql.DB
	t  table
}

func (s logStore) insert(ctx context.Context, ownerID int64, row map[string]any) (int64, error) {
	now := nowUTC()
	row["user_id"] = ownerID
	row["created_at"] = now
	row["updated_at"] = now
	cols, marks, args := insertClause(row)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.t.name+" ("+cols+") VALUES ("+marks+")", args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s logStore) get(ctx context.Context, id, ownerID int64) (map[string]any, error) {
	return queryRow(ctx, s.db,
		"SELECT * FROM "+s.t.name+" WHERE id = ? AND user_id = ? LIMIT 1", id, ownerID)
}

// list returns one page of the owner's rows plus the total under the same
// filters.
func (s logStore) list(ctx context.Context, ownerID int64, f model.ListFilter) ([]map[string]any, int64, error) {
	f = f.Normalized()
	where := []string{"user_id = ?"}
	args := []any{ownerID}
	if f.From != nil {
		where = append(where, s.t.dateColumn+" >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, s.t.dateColumn+" < ?")
		args = append(args, f.To.UTC())
	}
	switch {
	case f.Type == "":
	case s.t.typeCondition != nil:
		c, a := s.t.typeCondition(f.Type)
		where = append(where, c)
		args = append(args, a...)
	case s.t.typeColumn != "":
		where = append(where, s.t.typeColumn+" = ?")
		args = append(args, f.Type)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+s.t.name+" WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT * FROM " + s.t.name + " WHERE " + cond +
		" ORDER BY " + s.t.dateColumn + " DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, dataSQL, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	out, err := scanMaps(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// update writes patch to the owner's row.  The row is read first so an
// UPDATE that changes nothing (zero affected rows under MySQL) is not
// mistaken for a missing row.
func (s logStore) update(ctx context.Context, id, ownerID int64, patch map[string]any) error {
	if len(patch) == 0 {
		return ErrEmptyPatch
	}
	if _, err := s.get(ctx, id, ownerID); err != nil {
		return err
	}
	return s.write(ctx, id, ownerID, patch)
}

// write is update without the existence check, for callers that already
// loaded the row.
func (s logStore) write(ctx context.Context, id, ownerID int64, patch map[string]any) error {
	if len(patch) == 0 {
		return ErrEmptyPatch
	}
	patch["updated_at"] = nowUTC()
	set, args := setClause(patch)
	_, err := s.db.ExecContext(ctx,
		"UPDATE "+s.t.name+" SET "+set+" WHERE id = ? AND user_id = ?",
		append(args, id, ownerID)...)
	return err
}

func (s logStore) delete(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+s.t.name+" WHERE id = ? AND user_id = ?", id, ownerID)
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

// durationMinutes is the whole minutes between start and end.
func durationMinutes(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end time is before start time", ErrBadRequest)
	}
	return int(end.Sub(start) / time.Minute), nil
}
