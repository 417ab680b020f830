package email

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type received struct {
	from, to, user string
	data           []byte
}

type captureBackend struct {
	mu       sync.Mutex
	messages []received
	password string
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{backend: b}, nil
}

type captureSession struct {
	backend *captureBackend
	msg     received
}

func (s *captureSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *captureSession) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if password != s.backend.password {
			return errors.New("invalid credentials")
		}
		s.msg.user = username
		return nil
	}), nil
}

func (s *captureSession) Reset() { s.msg = received{user: s.msg.user} }

func (s *captureSession) Logout() error { return nil }

func (s *captureSession) Mail(from string, _ *smtp.MailOptions) error {
	s.msg.from = from
	return nil
}

func (s *captureSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.msg.to = to
	return nil
}

func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.msg.data = data
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, s.msg)
	s.backend.mu.Unlock()
	return nil
}

func startServer(t *testing.T, backend *captureBackend) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := smtp.NewServer(backend)
	srv.Domain = "localhost"
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second
	srv.AllowInsecureAuth = true

	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })
	return l.Addr().String()
}

func TestSMTPSender_SendEmail(t *testing.T) {
	backend := &captureBackend{}
	addr := startServer(t, backend)

	s := NewSMTPSender(addr, "events@crew.test", "", "", time.Second, zap.NewNop())
	err := s.SendEmail(context.Background(), "a@x.com", "You're in the raffle", "Hi Ana,\nsee you there.")
	require.NoError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.messages, 1)
	msg := backend.messages[0]
	assert.Equal(t, "events@crew.test", msg.from)
	assert.Equal(t, "a@x.com", msg.to)
	assert.Contains(t, string(msg.data), "Subject: You're in the raffle\r\n")
	assert.Contains(t, string(msg.data), "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, string(msg.data), "Hi Ana,\r\nsee you there.")
}

func TestSMTPSender_Authenticates(t *testing.T) {
	backend := &captureBackend{password: "s3cret"}
	addr := startServer(t, backend)

	s := NewSMTPSender(addr, "events@crew.test", "relay", "s3cret", time.Second, zap.NewNop())
	require.NoError(t, s.SendEmail(context.Background(), "a@x.com", "hello", "body"))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.messages, 1)
	assert.Equal(t, "relay", backend.messages[0].user)
}

func TestSMTPSender_RejectedCredentials(t *testing.T) {
	addr := startServer(t, &captureBackend{password: "s3cret"})

	s := NewSMTPSender(addr, "events@crew.test", "relay", "wrong", time.Second, zap.NewNop())
	err := s.SendEmail(context.Background(), "a@x.com", "hello", "body")
	assert.ErrorContains(t, err, "AUTH failed")
}

func TestSMTPSender_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := NewSMTPSender(addr, "events@crew.test", "", "", time.Second, zap.NewNop())
	err = s.SendEmail(context.Background(), "a@x.com", "hello", "body")
	assert.ErrorContains(t, err, "failed to connect")
}
