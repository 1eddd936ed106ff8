package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/lateleria/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Email is a rendered message ready for a Mailer
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers rendered emails
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// EmailRenderer renders order confirmation emails
type EmailRenderer struct {
	tmpl *template.Template
	iban string
	now  func() time.Time
}

// NewEmailRenderer parses the embedded templates. iban is the account
// buyers transfer to.
func NewEmailRenderer(iban string) (*EmailRenderer, error) {
	funcs := template.FuncMap{
		"formatPrice": formatPrice,
		"variants":    formatVariants,
	}
	tmpl, err := template.New("email").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &EmailRenderer{tmpl: tmpl, iban: iban, now: time.Now}, nil
}

// OrderConfirmationSubject is the subject line of the confirmation email
func OrderConfirmationSubject(orderNumber string) string {
	return "Confirmación de pedido " + orderNumber + " - La Teleria"
}

// RenderOrderConfirmation builds the confirmation email for an order
func (r *EmailRenderer) RenderOrderConfirmation(summary OrderSummary) (Email, error) {
	data := struct {
		OrderSummary
		IBAN string
		Year int
	}{summary, r.iban, r.now().Year()}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "order_confirmation.html", data); err != nil {
		return Email{}, fmt.Errorf("render order confirmation: %w", err)
	}
	return Email{
		To:      summary.CustomerEmail,
		Subject: OrderConfirmationSubject(summary.OrderNumber),
		HTML:    buf.String(),
	}, nil
}

func formatPrice(d decimal.Decimal) string {
	return valueobject.NewEUR(d).Format()
}

// formatVariants renders "Color: Rojo, Tamaño: Grande" sorted by name
func formatVariants(v map[string]string) string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + v[name]
	}
	return strings.Join(parts, ", ")
}
