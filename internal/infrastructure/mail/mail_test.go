package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lateleria/storefront/internal/application/notification"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mailConfig() config.MailConfig {
	return config.MailConfig{
		Provider:           "resend",
		APIKey:             "re_test",
		From:               "La Teleria <pedidos@lateleria.es>",
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Minute,
	}
}

func testEmail() notification.Email {
	return notification.Email{
		To:      "ana@example.com",
		Subject: "Confirmación de pedido LAT-AAA111-BBBB - La Teleria",
		HTML:    "<p>Gracias</p>",
	}
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/emails", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer(mailConfig(), WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), testEmail()))

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, "La Teleria <pedidos@lateleria.es>", got["from"])
	assert.Equal(t, []any{"ana@example.com"}, got["to"])
	assert.Equal(t, "<p>Gracias</p>", got["html"])
	assert.Equal(t, gobreaker.StateClosed, m.State())
}

func TestResendMailer_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":500,"name":"application_error","message":"boom"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer(mailConfig(), WithBaseURL(srv.URL), WithMailLogger(zap.NewNop()))
	require.NoError(t, err)

	for range 2 {
		err := m.Send(context.Background(), testEmail())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, m.State())

	err = m.Send(context.Background(), testEmail())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewResendMailer_Validation(t *testing.T) {
	cfg := mailConfig()
	cfg.APIKey = ""
	_, err := NewResendMailer(cfg)
	assert.Error(t, err)

	cfg = mailConfig()
	cfg.From = ""
	_, err = NewResendMailer(cfg)
	assert.Error(t, err)

	_, err = NewResendMailer(mailConfig(), WithBaseURL("://bad"))
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(zap.NewNop())
	require.NoError(t, m.Send(context.Background(), testEmail()))
	require.Len(t, m.Sent(), 1)
	assert.Equal(t, "ana@example.com", m.Sent()[0].To)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, testEmail()), context.Canceled)
	assert.Len(t, m.Sent(), 1)
}

func TestNew(t *testing.T) {
	m, err := New(config.MailConfig{Provider: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = New(mailConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ResendMailer{}, m)

	cfg := mailConfig()
	cfg.APIKey = ""
	_, err = New(cfg, zap.NewNop())
	assert.Error(t, err)
}
