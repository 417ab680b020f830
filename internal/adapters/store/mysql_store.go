package store

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS entries (
			email VARCHAR(255) PRIMARY KEY,
			id CHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(64) NOT NULL DEFAULT '',
			responses TEXT NOT NULL,
			tags TEXT NOT NULL,
			score INT NOT NULL,
			band VARCHAR(16) NOT NULL,
			variant VARCHAR(32) NOT NULL,
			entries_count INT NOT NULL,
			sms_status VARCHAR(16) NOT NULL,
			email_status VARCHAR(16) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			UNIQUE INDEX idx_entries_id (id)
		)`,
		`CREATE TABLE IF NOT EXISTS notification_log (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id CHAR(36) NOT NULL UNIQUE,
			entry_id CHAR(36) NOT NULL,
			channel VARCHAR(8) NOT NULL,
			template VARCHAR(64) NOT NULL,
			status VARCHAR(16) NOT NULL,
			metadata TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_notification_log_entry (entry_id)
		)`,
	},
	upsertSQL: `
		INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			phone = VALUES(phone),
			responses = VALUES(responses),
			tags = VALUES(tags),
			score = VALUES(score),
			band = VALUES(band),
			variant = VALUES(variant),
			sms_status = VALUES(sms_status),
			email_status = VALUES(email_status),
			updated_at = VALUES(updated_at),
			entries_count = entries_count + ?
	`,
	putSQL: `
		INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			phone = VALUES(phone),
			responses = VALUES(responses),
			tags = VALUES(tags),
			score = VALUES(score),
			band = VALUES(band),
			variant = VALUES(variant),
			entries_count = VALUES(entries_count),
			sms_status = VALUES(sms_status),
			email_status = VALUES(email_status),
			updated_at = VALUES(updated_at)
	`,
	listSQL: `
		SELECT id, entry_id, channel, template, status, metadata, created_at
		FROM notification_log
		WHERE entry_id = ?
		ORDER BY seq
	`,
	timeLayout: "2006-01-02 15:04:05.000000",
}

// NewMySQLStore connects to (and migrates) a MySQL-backed store
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLStore(db, mysqlDialect, logger)
}
