package store

import (
	"context"
	"sync"

	"github.com/mikey/lead-qualifier/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of core.EntryStore and
// core.NotificationLog
type MemoryStore struct {
	entries map[string]*core.EntryRecord
	logs    map[string][]*core.NotificationLogEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*core.EntryRecord),
		logs:    make(map[string][]*core.NotificationLogEntry),
		logger:  logger,
	}
}

// Get retrieves the record for an email
func (s *MemoryStore) Get(ctx context.Context, email string) (*core.EntryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[email]
	if !ok {
		return nil, core.ErrEntryNotFound
	}
	return copyEntry(entry), nil
}

// Put replaces the record for the entry's email
func (s *MemoryStore) Put(ctx context.Context, entry *core.EntryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Email] = copyEntry(entry)
	return nil
}

// Upsert inserts or updates the record while holding the write lock
func (s *MemoryStore) Upsert(ctx context.Context, entry *core.EntryRecord, base, delta int) (*core.EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyEntry(entry)
	if existing, ok := s.entries[entry.Email]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.EntriesCount = existing.EntriesCount + delta
	} else {
		stored.EntriesCount = base + delta
	}
	s.entries[entry.Email] = stored

	s.logger.Debug("Upserted entry",
		zap.String("email", entry.Email),
		zap.Int("entries", stored.EntriesCount))
	return copyEntry(stored), nil
}

// AddToCounter adds delta to an existing record's counter
func (s *MemoryStore) AddToCounter(ctx context.Context, email string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return 0, core.ErrEntryNotFound
	}
	entry.EntriesCount += delta
	return entry.EntriesCount, nil
}

// Append records a notification attempt
func (s *MemoryStore) Append(ctx context.Context, entry *core.NotificationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	cp.Metadata = make(map[string]string, len(entry.Metadata))
	for k, v := range entry.Metadata {
		cp.Metadata[k] = v
	}
	s.logs[entry.EntryID] = append(s.logs[entry.EntryID], &cp)
	return nil
}

// ListByEntry returns the attempts for an entry in insertion order
func (s *MemoryStore) ListByEntry(ctx context.Context, entryID string) ([]*core.NotificationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.logs[entryID]
	out := make([]*core.NotificationLogEntry, len(rows))
	for i, r := range rows {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

// Stop is a no-op for the memory store
func (s *MemoryStore) Stop() {}

func copyEntry(e *core.EntryRecord) *core.EntryRecord {
	cp := *e
	cp.Tags = append([]core.Tag(nil), e.Tags...)
	cp.Responses.HelpNeeded = append(core.StringList(nil), e.Responses.HelpNeeded...)
	cp.Responses.Interests = append(core.StringList(nil), e.Responses.Interests...)
	return &cp
}
