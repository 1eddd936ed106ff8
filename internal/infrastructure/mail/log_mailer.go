package mail

import (
	"context"
	"sync"

	"github.com/lateleria/storefront/internal/application/notification"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LogMailer writes emails to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []notification.Email
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email and keeps it for Sent
func (m *LogMailer) Send(ctx context.Context, email notification.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()

	m.logger.Info("Email not sent (log provider)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("html_bytes", len(email.HTML)),
	)
	return nil
}

// Sent returns a copy of every email passed to Send
func (m *LogMailer) Sent() []notification.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.Email, len(m.sent))
	copy(out, m.sent)
	return out
}

// New builds the mailer selected by cfg.Provider
func New(cfg config.MailConfig, logger *zap.Logger) (notification.Mailer, error) {
	if cfg.Provider == "resend" {
		m, err := NewResendMailer(cfg, WithMailLogger(logger))
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return NewLogMailer(logger), nil
}

var _ notification.Mailer = (*LogMailer)(nil)
