// Package testutil provides an in-memory SQLite database shaped like the
// production MySQL schema for package tests.
package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// LegacySchema mirrors the columns of the production MySQL tables closely
// enough for the statements the repositories issue.
var LegacySchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT, email TEXT UNIQUE, password TEXT,
		registration TEXT, due_date DATETIME, reg_type TEXT, description TEXT,
		work_settings TEXT, scope_practice TEXT, status TEXT, block_user TEXT,
		subscription_tier TEXT, subscription_status TEXT, subscription_end_date DATETIME,
		stripe_customer_id TEXT, stripe_subscription_id TEXT,
		created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE work_hours (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		start_time DATETIME, end_time DATETIME, duration_minutes INTEGER,
		work_type TEXT, work_description TEXT, document_ids TEXT,
		created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE cpd_hours (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		training_name TEXT, activity_date DATETIME, start_time DATETIME, end_time DATETIME,
		duration_minutes INTEGER, number_hours TEXT, participatory_hours TEXT,
		description TEXT, document_ids TEXT, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		feedback_date DATETIME, feedback_type TEXT, feedback_from TEXT, feedback_text TEXT,
		document_ids TEXT, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE reflections (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		reflection_date DATETIME, title TEXT, category TEXT, reflection_text TEXT,
		document_ids TEXT, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE appraisals (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		appraisal_date DATETIME, appraiser_name TEXT, appraisal_type TEXT, notes TEXT,
		document_ids TEXT, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE calendar_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		title TEXT, description TEXT, event_type TEXT, start_date DATETIME, end_date DATETIME,
		location TEXT, created_at DATETIME, updated_at DATETIME)`,
	`CREATE TABLE documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL,
		document_name TEXT, file_path TEXT, file_type TEXT, file_size INTEGER, category TEXT,
		created_at DATETIME, updated_at DATETIME)`,
}

// NewDB opens a fresh in-memory database with LegacySchema applied.  A
// single connection keeps every statement on the same memory database.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range LegacySchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}
