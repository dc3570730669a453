package mocks

import (
	"context"
	"sync"
	"testing"
	"time"
)

type SentCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

type MailSender struct {
	mu      sync.Mutex
	sent    []SentCode
	failErr error
}

func NewMailSender() *MailSender {
	return &MailSender{
		sent: make([]SentCode, 0),
	}
}

func (m *MailSender) SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}

	m.sent = append(m.sent, SentCode{Email: email, Code: code, ExpiresAt: expiresAt})
	return nil
}

// FailWith makes every following send return err. Pass nil to recover.
func (m *MailSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MailSender) SentCodes() []SentCode {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]SentCode{}, m.sent...)
}

func (m *MailSender) AssertCodeSent(t *testing.T, email, code string) {
	t.Helper()

	for _, sc := range m.SentCodes() {
		if sc.Email == email && sc.Code == code {
			return
		}
	}
	t.Errorf("expected code %s to be sent to %s, but it was not", code, email)
}

func (m *MailSender) AssertNothingSent(t *testing.T) {
	t.Helper()

	if n := len(m.SentCodes()); n != 0 {
		t.Errorf("expected no mails sent, but got %d", n)
	}
}
