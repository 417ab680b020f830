package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS entries (
			email TEXT PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			responses TEXT NOT NULL,
			tags TEXT NOT NULL,
			score INTEGER NOT NULL,
			band TEXT NOT NULL,
			variant TEXT NOT NULL,
			entries_count INTEGER NOT NULL,
			sms_status TEXT NOT NULL,
			email_status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notification_log (
			id TEXT PRIMARY KEY,
			entry_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			template TEXT NOT NULL,
			status TEXT NOT NULL,
			metadata TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notification_log_entry ON notification_log(entry_id)`,
	},
	upsertSQL: `
		INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			responses = excluded.responses,
			tags = excluded.tags,
			score = excluded.score,
			band = excluded.band,
			variant = excluded.variant,
			sms_status = excluded.sms_status,
			email_status = excluded.email_status,
			updated_at = excluded.updated_at,
			entries_count = entries.entries_count + ?
	`,
	putSQL: `
		INSERT OR REPLACE INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
	listSQL: `
		SELECT id, entry_id, channel, template, status, metadata, created_at
		FROM notification_log
		WHERE entry_id = ?
		ORDER BY rowid
	`,
	timeLayout: time.RFC3339Nano,
}

// NewSQLiteStore opens (and migrates) a SQLite-backed store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows one writer; a single connection serialises transactions
	db.SetMaxOpenConns(1)

	return newSQLStore(db, sqliteDialect, logger)
}
