package core

import (
	"context"
)

// EntryStore persists one EntryRecord per contact email
type EntryStore interface {
	// Get retrieves the record for an email, or ErrEntryNotFound
	Get(ctx context.Context, email string) (*EntryRecord, error)

	// Put writes the whole record, replacing any existing one for the email
	Put(ctx context.Context, entry *EntryRecord) error

	// Upsert atomically inserts the record with base+delta entries, or replaces
	// its classification fields and adds delta to the existing counter
	Upsert(ctx context.Context, entry *EntryRecord, base, delta int) (*EntryRecord, error)

	// AddToCounter atomically adds delta to an existing record's counter
	AddToCounter(ctx context.Context, email string, delta int) (int, error)
}

// NotificationLog is the append-only audit sink for outbound messages
type NotificationLog interface {
	// Append records one notification attempt
	Append(ctx context.Context, entry *NotificationLogEntry) error

	// ListByEntry returns the attempts recorded for an entry, oldest first
	ListByEntry(ctx context.Context, entryID string) ([]*NotificationLogEntry, error)
}

// SMSGateway sends a text message and returns the gateway's delivery id
type SMSGateway interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// EmailSender sends a plain-text email
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
