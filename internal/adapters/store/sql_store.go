package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/lead-qualifier/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name       string
	schema     []string
	upsertSQL  string
	putSQL     string
	listSQL    string
	timeLayout string
}

// SQLStore is a database/sql implementation of core.EntryStore and
// core.NotificationLog
type SQLStore struct {
	db      *sql.DB
	logger  *zap.Logger
	dialect dialect
}

const entryColumns = `id, email, name, phone, responses, tags, score, band, variant,
	entries_count, sms_status, email_status, created_at, updated_at`

func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return &SQLStore{db: db, logger: logger, dialect: d}, nil
}

// Get retrieves the record for an email
func (s *SQLStore) Get(ctx context.Context, email string) (*core.EntryRecord, error) {
	return s.getEntry(ctx, s.db, email)
}

// Put writes the whole record, replacing any existing row for the email
func (s *SQLStore) Put(ctx context.Context, entry *core.EntryRecord) error {
	args, err := s.entryArgs(entry, entry.EntriesCount)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.putSQL, args...); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// Upsert inserts the record or adds delta to the stored counter in one statement
func (s *SQLStore) Upsert(ctx context.Context, entry *core.EntryRecord, base, delta int) (*core.EntryRecord, error) {
	args, err := s.entryArgs(entry, base+delta)
	if err != nil {
		return nil, err
	}
	args = append(args, delta)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.dialect.upsertSQL, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert entry: %w", err)
	}
	saved, err := s.getEntry(ctx, tx, entry.Email)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.logger.Debug("Upserted entry",
		zap.String("backend", s.dialect.name),
		zap.String("email", entry.Email),
		zap.Int("entries", saved.EntriesCount))
	return saved, nil
}

// AddToCounter adds delta to the stored counter and returns the new value
func (s *SQLStore) AddToCounter(ctx context.Context, email string, delta int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE entries SET entries_count = entries_count + ? WHERE email = ?
	`, delta, email)
	if err != nil {
		return 0, fmt.Errorf("failed to update counter: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return 0, core.ErrEntryNotFound
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT entries_count FROM entries WHERE email = ?`, email).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter update: %w", err)
	}
	return count, nil
}

// Append records a notification attempt
func (s *SQLStore) Append(ctx context.Context, entry *core.NotificationLogEntry) error {
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_log (id, entry_id, channel, template, status, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.EntryID, string(entry.Channel), entry.Template, string(entry.Status),
		string(meta), entry.CreatedAt.UTC().Format(s.dialect.timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert notification log entry: %w", err)
	}
	return nil
}

// ListByEntry returns the attempts recorded for an entry, oldest first
func (s *SQLStore) ListByEntry(ctx context.Context, entryID string) ([]*core.NotificationLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.listSQL, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification log: %w", err)
	}
	defer rows.Close()

	var out []*core.NotificationLogEntry
	for rows.Next() {
		var (
			e                        core.NotificationLogEntry
			channel, status, meta, c string
		)
		if err := rows.Scan(&e.ID, &e.EntryID, &channel, &e.Template, &status, &meta, &c); err != nil {
			return nil, fmt.Errorf("failed to scan notification log entry: %w", err)
		}
		e.Channel = core.Channel(channel)
		e.Status = core.DeliveryStatus(status)
		if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		if e.CreatedAt, err = s.parseTime(c); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Stop closes the database connection
func (s *SQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.String("backend", s.dialect.name), zap.Error(err))
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) getEntry(ctx context.Context, q queryer, email string) (*core.EntryRecord, error) {
	var (
		e                                          core.EntryRecord
		responses, tags, band, variant, sms, mail string
		created, updated                           string
	)
	err := q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE email = ?`, email).Scan(
		&e.ID, &e.Email, &e.Name, &e.Phone, &responses, &tags, &e.Score, &band, &variant,
		&e.EntriesCount, &sms, &mail, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to query entry: %w", err)
	}

	if err := json.Unmarshal([]byte(responses), &e.Responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	e.Band = core.Band(band)
	e.Variant = core.Variant(variant)
	e.SMSStatus = core.DeliveryStatus(sms)
	e.EmailStatus = core.DeliveryStatus(mail)
	if e.CreatedAt, err = s.parseTime(created); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = s.parseTime(updated); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLStore) entryArgs(e *core.EntryRecord, entries int) ([]any, error) {
	responses, err := json.Marshal(e.Responses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode responses: %w", err)
	}
	tags := e.Tags
	if tags == nil {
		tags = []core.Tag{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return []any{
		e.ID, e.Email, e.Name, e.Phone, string(responses), string(tagsJSON), e.Score,
		string(e.Band), string(e.Variant), entries, string(e.SMSStatus), string(e.EmailStatus),
		e.CreatedAt.UTC().Format(s.dialect.timeLayout), e.UpdatedAt.UTC().Format(s.dialect.timeLayout),
	}, nil
}

func (s *SQLStore) parseTime(v string) (time.Time, error) {
	t, err := time.Parse(s.dialect.timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", v, err)
	}
	return t, nil
}
