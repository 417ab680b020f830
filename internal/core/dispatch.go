package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoDestination is returned when a phone number has no usable digits
var ErrNoDestination = errors.New("no usable destination")

// Suppressor reports contacts that must never receive outbound messages
type Suppressor interface {
	IsSuppressed(email string) bool
}

// Notification carries what the dispatcher needs to contact a lead
type Notification struct {
	EntryID      string
	Email        string
	Name         string
	Phone        string
	Tags         TagSet
	Band         Band
	Variant      Variant
	Stage        string
	Industry     string
	EntriesCount int
}

// DispatchOutcome is the result of one detached dispatch
type DispatchOutcome struct {
	SMSDeliveryID string
	Simulated     bool
	Err           error
}

// DispatchResult delivers the outcome of a detached dispatch once it
// completes. Callers may discard it.
type DispatchResult <-chan DispatchOutcome

// Dispatcher sends lead notifications outside the request path
type Dispatcher struct {
	sms         SMSGateway
	email       EmailSender
	suppressor  Suppressor
	logger      *zap.Logger
	timeout     time.Duration
	countryCode string
	wg          sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil gateway or sender means that
// channel is simulated.
func NewDispatcher(
	sms SMSGateway,
	email EmailSender,
	suppressor Suppressor,
	logger *zap.Logger,
	timeout time.Duration,
	countryCode string,
) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sms:         sms,
		email:       email,
		suppressor:  suppressor,
		logger:      logger,
		timeout:     timeout,
		countryCode: countryCode,
	}
}

// Simulated reports whether a channel has no real transport configured
func (d *Dispatcher) Simulated(ch Channel) bool {
	if ch == ChannelEmail {
		return d.email == nil
	}
	return d.sms == nil
}

// Suppressed reports whether the contact is on the suppression list
func (d *Dispatcher) Suppressed(email string) bool {
	return d.suppressor != nil && d.suppressor.IsSuppressed(email)
}

// Dispatch starts delivery in the background and returns immediately
func (d *Dispatcher) Dispatch(n Notification) DispatchResult {
	out := make(chan DispatchOutcome, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Dispatch panicked", zap.Any("panic", r), zap.String("entry_id", n.EntryID))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		out <- d.deliver(ctx, n)
	}()
	return out
}

// Close waits for in-flight dispatches or until ctx is done
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) DispatchOutcome {
	if d.Suppressed(n.Email) {
		d.logger.Info("Skipping dispatch for suppressed contact",
			zap.String("entry_id", n.EntryID),
			zap.String("action", "suppressed"))
		return DispatchOutcome{}
	}

	outcome := DispatchOutcome{Simulated: d.sms == nil}
	body := SelectMessage(n)

	id, err := d.sendSMS(ctx, n.Phone, body)
	if err != nil {
		dispatchErr := &DispatchError{Channel: ChannelSMS, Err: err}
		d.logger.Error("SMS dispatch failed", zap.Error(dispatchErr), zap.String("entry_id", n.EntryID))
		outcome.Err = dispatchErr
	} else {
		outcome.SMSDeliveryID = id
		d.logger.Info("SMS dispatched",
			zap.String("entry_id", n.EntryID),
			zap.String("delivery_id", id),
			zap.Bool("simulated", outcome.Simulated))
	}

	if err := d.sendEmail(ctx, n); err != nil {
		dispatchErr := &DispatchError{Channel: ChannelEmail, Err: err}
		d.logger.Error("Email dispatch failed", zap.Error(dispatchErr), zap.String("entry_id", n.EntryID))
		if outcome.Err == nil {
			outcome.Err = dispatchErr
		}
	}

	return outcome
}

func (d *Dispatcher) sendSMS(ctx context.Context, phone, body string) (string, error) {
	to, err := NormalizePhone(phone, d.countryCode)
	if err != nil {
		return "", err
	}
	if d.sms == nil {
		return "sim-" + uuid.NewString(), nil
	}
	return d.sms.SendSMS(ctx, to, body)
}

func (d *Dispatcher) sendEmail(ctx context.Context, n Notification) error {
	if d.email == nil {
		d.logger.Debug("Email simulated", zap.String("entry_id", n.EntryID))
		return nil
	}
	subject := "You're in the raffle"
	body := fmt.Sprintf("Hi %s,\n\nThanks for completing the survey. You now hold %d raffle entries.\n",
		displayName(n.Name), n.EntriesCount)
	return d.email.SendEmail(ctx, n.Email, subject, body)
}

// NormalizePhone converts a phone number to +<digits>. A bare national
// number of ten digits gets the default country code.
func NormalizePhone(phone, countryCode string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r <= unicode.MaxASCII {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return "", ErrNoDestination
	}
	if len(digits) == 10 && countryCode != "" {
		digits = countryCode + digits
	}
	return "+" + digits, nil
}

var messageRules = []Rule[Notification, string]{
	{
		Name:   "vip",
		Match:  func(n Notification) bool { return n.Band == BandPriority || n.Tags.Has("volume-high") },
		Result: "Hi %s, you're one of our top-fit guests. Our founder will reach out personally this week to plan your AI rollout.",
	},
	{
		Name:   "efficiency",
		Match:  func(n Notification) bool { return n.Tags.Has("blocked-time") },
		Result: "Hi %s, short on time? Our 15-minute AI workflow teardown shows where to win back hours every week.",
	},
	{
		Name:   "quality",
		Match:  func(n Notification) bool { return hasAnyTag("blocked-quality", "blocked-trust")(n.Tags) },
		Result: "Hi %s, worried about AI output you can trust? We'll walk you through the review loop our best members use.",
	},
	{
		Name:   "tactical",
		Match:  func(n Notification) bool { return hasAnyTag("blocked-prompting", "blocked-consistency")(n.Tags) },
		Result: "Hi %s, here are the prompt templates that keep our members' results consistent. Bring questions to the event!",
	},
}

// SelectMessage picks the SMS body for a notification by priority
func SelectMessage(n Notification) string {
	if format, ok := FirstMatch(messageRules, n); ok {
		return fmt.Sprintf(format, displayName(n.Name))
	}

	stage := strings.TrimSpace(n.Stage)
	if stage == "" {
		stage = "growing"
	}
	msg := fmt.Sprintf("Hi %s, thanks for joining! As a %s business", displayName(n.Name), stage)
	if industry := strings.TrimSpace(n.Industry); industry != "" {
		msg += " in " + industry
	}
	return msg + ", you're entered in the raffle. Watch for event updates."
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "there"
	}
	return name
}
