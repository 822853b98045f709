// Package testutil provides database helpers for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// schema mirrors the Postgres migrations minus the defaults sqlite cannot
// evaluate; IDs come from the model create hook instead.
const schema = `
CREATE TABLE lead_stages (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	key TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '#007bff',
	description TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	is_system_stage BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE call_operators (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	full_name TEXT NOT NULL
);
CREATE TABLE client_information (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	middle_name TEXT,
	full_name TEXT NOT NULL DEFAULT '',
	phone TEXT,
	phone2 TEXT,
	passport_number TEXT,
	passport_issue_date DATETIME,
	passport_expiry_date DATETIME,
	passport_issue_place TEXT,
	birth_date DATETIME,
	address TEXT,
	email TEXT,
	password TEXT,
	heard TEXT NOT NULL DEFAULT ''
);
CREATE TABLE leads (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	phone_number TEXT NOT NULL,
	client_name TEXT,
	operator_id TEXT,
	call_status TEXT,
	call_duration INTEGER,
	notes TEXT,
	audio_path TEXT,
	follow_up_date DATETIME,
	is_converted BOOLEAN NOT NULL DEFAULT FALSE,
	converted_client_id TEXT,
	stage_id TEXT
);
CREATE TABLE consulting_contracts (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	contract_number INTEGER NOT NULL UNIQUE
);
`

// NewDB opens an isolated in-memory database carrying the lead pipeline
// schema. The pool is capped at one connection so every query sees the
// same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec(schema).Error)
	return db
}
