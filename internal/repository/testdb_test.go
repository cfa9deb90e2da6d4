package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/iliyamo/revalidation-api/internal/database"
	"github.com/iliyamo/revalidation-api/internal/testutil"
)

// newTestDB returns an in-memory database with the legacy tables.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return testutil.NewDB(t)
}

// newTestWriter wires the gorm and raw stores over db.
func newTestWriter(t *testing.T, db *sql.DB) *FallbackWriter {
	t.Helper()
	gdb, err := database.OpenGorm(db, logger.Silent)
	require.NoError(t, err)
	return NewFallbackWriter(NewGormUserStore(gdb), NewRawUserStore(db))
}

// insertLegacyUser writes a users row exactly as given and returns its id.
func insertLegacyUser(t *testing.T, db *sql.DB, cols map[string]any) int64 {
	t.Helper()
	row := map[string]any{
		"name":       "Legacy User",
		"email":      "legacy@example.com",
		"password":   "x",
		"status":     "1",
		"block_user": "1",
	}
	for k, v := range cols {
		row[k] = v
	}
	names, marks, args := insertClause(row)
	res, err := db.ExecContext(context.Background(), "INSERT INTO users ("+names+") VALUES ("+marks+")", args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// rawColumn reads one column of a users row without any decoding.
func rawColumn(t *testing.T, db *sql.DB, id int64, col string) any {
	t.Helper()
	var v any
	require.NoError(t, db.QueryRow("SELECT "+col+" FROM users WHERE id = ?", id).Scan(&v))
	return v
}
