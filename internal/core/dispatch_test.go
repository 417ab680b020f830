package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type recordingGateway struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (g *recordingGateway) SendSMS(ctx context.Context, to, body string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.sent = append(g.sent, to+"|"+body)
	return "msg-1", nil
}

type blockingGateway struct{}

func (blockingGateway) SendSMS(ctx context.Context, to, body string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type staticSuppressor map[string]bool

func (s staticSuppressor) IsSuppressed(email string) bool { return s[email] }

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, code, want string
		wantErr        error
	}{
		{in: "(555) 123-4567", code: "1", want: "+15551234567"},
		{in: "555.123.4567", code: "1", want: "+15551234567"},
		{in: "+1 555 123 4567", code: "1", want: "+15551234567"},
		{in: "+44 20 7946 0958", code: "1", want: "+442079460958"},
		{in: "5551234567", code: "", want: "+5551234567"},
		{in: "call me", code: "1", wantErr: ErrNoDestination},
		{in: "", code: "1", wantErr: ErrNoDestination},
	}
	for _, tt := range tests {
		got, err := NormalizePhone(tt.in, tt.code)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSelectMessage(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want string
	}{
		{"priority band", Notification{Name: "Ana", Band: BandPriority, Tags: tagSet("blocked-time")}, "top-fit"},
		{"high volume", Notification{Band: BandEngage, Tags: tagSet("volume-high", "blocked-time")}, "top-fit"},
		{"time beats quality", Notification{Tags: tagSet("blocked-time", "blocked-quality")}, "short on time"},
		{"trust", Notification{Tags: tagSet("blocked-trust")}, "output you can trust"},
		{"consistency", Notification{Tags: tagSet("blocked-consistency")}, "prompt templates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, SelectMessage(tt.n), tt.want)
		})
	}
}

func TestSelectMessage_Default(t *testing.T) {
	msg := SelectMessage(Notification{Name: "Ana", Stage: "Startup", Industry: "Fitness", Tags: tagSet()})
	assert.Equal(t, "Hi Ana, thanks for joining! As a Startup business in Fitness, you're entered in the raffle. Watch for event updates.", msg)

	msg = SelectMessage(Notification{Tags: tagSet()})
	assert.True(t, strings.HasPrefix(msg, "Hi there, thanks for joining! As a growing business,"), msg)
}

func TestDispatch_SimulatesWithoutGateway(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(nil, nil, nil, zap.NewNop(), time.Second, "1")
	assert.True(t, d.Simulated(ChannelSMS))
	assert.True(t, d.Simulated(ChannelEmail))

	outcome := <-d.Dispatch(Notification{EntryID: "e1", Phone: "5551234567", Tags: tagSet()})

	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Simulated)
	assert.True(t, strings.HasPrefix(outcome.SMSDeliveryID, "sim-"))
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatch_SendsNormalisedNumber(t *testing.T) {
	defer goleak.VerifyNone(t)

	gw := &recordingGateway{}
	d := NewDispatcher(gw, nil, nil, zap.NewNop(), time.Second, "1")

	outcome := <-d.Dispatch(Notification{EntryID: "e1", Name: "Ana", Phone: "(555) 123-4567", Tags: tagSet("blocked-time")})

	require.NoError(t, outcome.Err)
	assert.Equal(t, "msg-1", outcome.SMSDeliveryID)
	require.Len(t, gw.sent, 1)
	assert.True(t, strings.HasPrefix(gw.sent[0], "+15551234567|Hi Ana, short on time?"))
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatch_FailureIsReportedNotRaised(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(&recordingGateway{err: errors.New("gateway down")}, nil, nil, zap.NewNop(), time.Second, "1")

	outcome := <-d.Dispatch(Notification{EntryID: "e1", Phone: "5551234567", Tags: tagSet()})

	var dispatchErr *DispatchError
	require.ErrorAs(t, outcome.Err, &dispatchErr)
	assert.Equal(t, ChannelSMS, dispatchErr.Channel)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatch_TimesOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(blockingGateway{}, nil, nil, zap.NewNop(), 20*time.Millisecond, "1")

	outcome := <-d.Dispatch(Notification{EntryID: "e1", Phone: "5551234567", Tags: tagSet()})

	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatch_SkipsSuppressedContacts(t *testing.T) {
	defer goleak.VerifyNone(t)

	gw := &recordingGateway{}
	d := NewDispatcher(gw, nil, staticSuppressor{"staff@crew.test": true}, zap.NewNop(), time.Second, "1")

	assert.True(t, d.Suppressed("staff@crew.test"))
	outcome := <-d.Dispatch(Notification{EntryID: "e1", Email: "staff@crew.test", Phone: "5551234567", Tags: tagSet()})

	require.NoError(t, outcome.Err)
	assert.Empty(t, gw.sent)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatch_CloseHonoursContext(t *testing.T) {
	d := NewDispatcher(blockingGateway{}, nil, nil, zap.NewNop(), 200*time.Millisecond, "1")
	_ = d.Dispatch(Notification{EntryID: "e1", Phone: "5551234567", Tags: tagSet()})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	require.NoError(t, d.Close(context.Background()))
}

type recordingSender struct {
	mu   sync.Mutex
	to   []string
	body []string
}

func (s *recordingSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.body = append(s.body, body)
	return nil
}

func TestDispatch_SendsEmailAlongsideSMS(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{}
	d := NewDispatcher(nil, sender, nil, zap.NewNop(), time.Second, "1")
	assert.False(t, d.Simulated(ChannelEmail))

	outcome := <-d.Dispatch(Notification{EntryID: "e1", Email: "a@x.com", Name: "Ana", Phone: "5551234567", EntriesCount: 5, Tags: tagSet()})

	require.NoError(t, outcome.Err)
	require.Equal(t, []string{"a@x.com"}, sender.to)
	assert.Contains(t, sender.body[0], "You now hold 5 raffle entries")
	require.NoError(t, d.Close(context.Background()))
}
