package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/lead-qualifier/internal/utils"
	"go.uber.org/zap"
)

// PipelineState is a step of the qualification state machine
type PipelineState string

const (
	StateReceived   PipelineState = "RECEIVED"
	StateClassified PipelineState = "CLASSIFIED"
	StateReconciled PipelineState = "RECONCILED"
	StateLogged     PipelineState = "LOGGED"
	StateResponded  PipelineState = "RESPONDED"
	StateFailed     PipelineState = "FAILED"
)

// ReconcileMode selects how the entries counter is updated
type ReconcileMode string

const (
	// ReconcileAtomic performs one insert-or-add round trip
	ReconcileAtomic ReconcileMode = "atomic"
	// ReconcileReadThenWrite reads the record and writes existing+bonus.
	// It loses increments under concurrent submissions for one email.
	ReconcileReadThenWrite ReconcileMode = "read_then_write"
)

const previewSize = 160

// PipelineOptions holds the entry allotment and reconciliation settings
type PipelineOptions struct {
	BaseEntries  int
	BonusEntries int
	Mode         ReconcileMode
}

// Outcome is the result of one submission
type Outcome struct {
	State          PipelineState
	Classification *Classification
	Entry          *EntryRecord
	BonusGranted   int
	// Dispatch completes when the detached notification finishes. Callers
	// are free to ignore it.
	Dispatch DispatchResult
}

// QualificationService runs the classify, reconcile, log and dispatch pipeline
type QualificationService struct {
	entries    EntryStore
	log        NotificationLog
	dispatcher *Dispatcher
	text       *utils.TextProcessor
	logger     *zap.Logger
	opts       PipelineOptions

	now   func() time.Time
	newID func() string
}

// NewQualificationService creates a new qualification service
func NewQualificationService(
	entries EntryStore,
	log NotificationLog,
	dispatcher *Dispatcher,
	text *utils.TextProcessor,
	logger *zap.Logger,
	opts PipelineOptions,
) *QualificationService {
	if opts.Mode == "" {
		opts.Mode = ReconcileAtomic
	}
	return &QualificationService{
		entries:    entries,
		log:        log,
		dispatcher: dispatcher,
		text:       text,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Submit processes one survey submission
func (s *QualificationService) Submit(ctx context.Context, sub *Submission) (*Outcome, error) {
	out := &Outcome{State: StateReceived}

	email := strings.ToLower(strings.TrimSpace(sub.Email))
	if email == "" {
		out.State = StateFailed
		return out, &ValidationError{Field: "email", Reason: "is required"}
	}
	sub.Email = email

	out.Classification = Classify(sub)
	out.State = StateClassified
	s.logger.Debug("Submission classified",
		zap.String("email", email),
		zap.Int("score", out.Classification.Score),
		zap.String("band", string(out.Classification.Band)),
		zap.String("variant", string(out.Classification.Variant)))

	entry, err := s.reconcile(ctx, sub, out.Classification)
	if err != nil {
		out.State = StateFailed
		s.logger.Error("Failed to reconcile entry", zap.Error(err), zap.String("email", email))
		return out, err
	}
	out.Entry = entry
	out.BonusGranted = s.opts.BonusEntries
	out.State = StateReconciled

	n := Notification{
		EntryID:      entry.ID,
		Email:        email,
		Name:         entry.Name,
		Phone:        entry.Phone,
		Tags:         out.Classification.Tags,
		Band:         out.Classification.Band,
		Variant:      out.Classification.Variant,
		Stage:        sub.BusinessStage,
		Industry:     sub.Industry,
		EntriesCount: entry.EntriesCount,
	}

	s.recordAttempts(ctx, entry, out.Classification, n)
	out.State = StateLogged

	out.Dispatch = s.dispatcher.Dispatch(n)
	out.State = StateResponded

	s.logger.Info("Submission qualified",
		zap.String("entry_id", entry.ID),
		zap.Int("score", out.Classification.Score),
		zap.String("band", string(out.Classification.Band)),
		zap.Int("entries", entry.EntriesCount))

	return out, nil
}

func (s *QualificationService) reconcile(ctx context.Context, sub *Submission, c *Classification) (*EntryRecord, error) {
	now := s.now()
	record := &EntryRecord{
		ID:          s.newID(),
		Email:       sub.Email,
		Name:        strings.TrimSpace(sub.Name),
		Phone:       strings.TrimSpace(sub.Phone),
		Responses:   sub.Answers,
		Tags:        c.Tags.Sorted(),
		Score:       c.Score,
		Band:        c.Band,
		Variant:     c.Variant,
		SMSStatus:   s.statusFor(ChannelSMS, sub.Email),
		EmailStatus: s.statusFor(ChannelEmail, sub.Email),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.opts.Mode == ReconcileReadThenWrite {
		existing, err := s.entries.Get(ctx, sub.Email)
		switch {
		case errors.Is(err, ErrEntryNotFound):
			record.EntriesCount = s.opts.BaseEntries + s.opts.BonusEntries
		case err != nil:
			return nil, &PersistenceError{Op: "get", Err: err}
		default:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			record.EntriesCount = existing.EntriesCount + s.opts.BonusEntries
		}
		if err := s.entries.Put(ctx, record); err != nil {
			return nil, &PersistenceError{Op: "put", Err: err}
		}
		return record, nil
	}

	saved, err := s.entries.Upsert(ctx, record, s.opts.BaseEntries, s.opts.BonusEntries)
	if err != nil {
		return nil, &PersistenceError{Op: "upsert", Err: err}
	}
	return saved, nil
}

func (s *QualificationService) statusFor(ch Channel, email string) DeliveryStatus {
	switch {
	case s.dispatcher.Suppressed(email):
		return StatusSuppressed
	case s.dispatcher.Simulated(ch):
		return StatusSimulated
	default:
		return StatusQueued
	}
}

// recordAttempts writes one log row per channel. Failures are logged only.
func (s *QualificationService) recordAttempts(ctx context.Context, entry *EntryRecord, c *Classification, n Notification) {
	meta := func(extra map[string]string) map[string]string {
		m := map[string]string{
			"score":   strconv.Itoa(c.Score),
			"band":    string(c.Band),
			"variant": string(c.Variant),
		}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	attempts := []*NotificationLogEntry{
		{
			Channel:  ChannelSMS,
			Template: string(c.SMSTemplate),
			Status:   entry.SMSStatus,
			Metadata: meta(map[string]string{
				"destination": entry.Phone,
				"preview":     s.text.Preview(SelectMessage(n), previewSize),
			}),
		},
		{
			Channel:  ChannelEmail,
			Template: EmailTemplate(c.Variant),
			Status:   entry.EmailStatus,
			Metadata: meta(map[string]string{"destination": entry.Email}),
		},
	}

	for _, a := range attempts {
		a.ID = s.newID()
		a.EntryID = entry.ID
		a.CreatedAt = s.now()
		if err := s.log.Append(ctx, a); err != nil {
			s.logger.Warn("Failed to record notification attempt",
				zap.Error(&AuditError{Channel: a.Channel, Err: err}),
				zap.String("entry_id", entry.ID))
		}
	}
}
