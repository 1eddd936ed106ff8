// Package mail delivers order confirmation emails.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/lateleria/storefront/internal/application/notification"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/lateleria/storefront/internal/infrastructure/telemetry"
	"github.com/resend/resend-go/v2"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker is open
var ErrUnavailable = errors.New("mail provider unavailable")

// ResendMailer sends email through the Resend API. Calls go through a
// circuit breaker so a failing provider is not hammered on every order.
type ResendMailer struct {
	client  *resend.Client
	from    string
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger
}

// ResendOption configures a ResendMailer
type ResendOption func(*ResendMailer) error

// WithBaseURL points the client at another API host
func WithBaseURL(raw string) ResendOption {
	return func(m *ResendMailer) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid mail base url: %w", err)
		}
		if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
			u.Path += "/"
		}
		m.client.BaseURL = u
		return nil
	}
}

// WithMailLogger sets the logger used for breaker state changes
func WithMailLogger(logger *zap.Logger) ResendOption {
	return func(m *ResendMailer) error {
		m.logger = logger
		return nil
	}
}

// NewResendMailer creates a Resend backed mailer
func NewResendMailer(cfg config.MailConfig, opts ...ResendOption) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mail api key is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail sender is required")
	}

	m := &ResendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	m.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "resend",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.logger.Warn("Mail circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return m, nil
}

// Send delivers email and returns the provider message id in logs only
func (m *ResendMailer) Send(ctx context.Context, email notification.Email) (err error) {
	ctx, span := telemetry.StartClientSpan(ctx, "resend.send_email",
		attribute.String("mail.provider", "resend"),
		attribute.String("mail.breaker_state", m.breaker.State().String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	id, err := m.breaker.Execute(func() (string, error) {
		resp, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
			From:    m.from,
			To:      []string{email.To},
			Subject: email.Subject,
			Html:    email.HTML,
		})
		if err != nil {
			return "", err
		}
		return resp.Id, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Debug("Email accepted by provider", zap.String("message_id", id), zap.String("to", email.To))
	return nil
}

// State reports the breaker state
func (m *ResendMailer) State() gobreaker.State {
	return m.breaker.State()
}

var _ notification.Mailer = (*ResendMailer)(nil)
