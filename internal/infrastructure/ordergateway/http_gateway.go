// Package ordergateway talks to a remote storefront API: catalog reads and order submission.
package ordergateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lateleria/storefront/internal/application/checkout"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// OrdersPath is the order-creation endpoint
	OrdersPath = "/api/v1/pedidos"

	catalogTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20

	msgCreateFailed    = "Error al crear el pedido"
	msgTransportFailed = "No se pudo conectar con la tienda. Inténtalo de nuevo."
)

// HTTPGateway implements checkout.OrderGateway over HTTP
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

// Option configures an HTTPGateway
type Option func(*HTTPGateway)

// WithHTTPClient replaces the default instrumented client
func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPGateway) {
		g.client = c
	}
}

// WithTimeout bounds each request. Without it a submission waits as long as
// the caller's context allows.
func WithTimeout(d time.Duration) Option {
	return func(g *HTTPGateway) {
		if d > 0 {
			g.client.Timeout = d
		}
	}
}

// NewHTTPGateway creates a gateway posting to baseURL + OrdersPath
func NewHTTPGateway(baseURL string, opts ...Option) (*HTTPGateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid storefront url %q", baseURL)
	}

	g := &HTTPGateway{
		endpoint: strings.TrimRight(baseURL, "/") + OrdersPath,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type createOrderResponse struct {
	Success     bool
	OrderNumber string
	OrderID     string
	Error       string
}

// decodeCreateOrderResponse reads each field on its own so a malformed
// orderId or error field cannot hide a confirmed order number.
func decodeCreateOrderResponse(raw []byte) (createOrderResponse, error) {
	var out createOrderResponse
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, err
	}
	_ = json.Unmarshal(fields["success"], &out.Success)
	_ = json.Unmarshal(fields["orderNumber"], &out.OrderNumber)
	_ = json.Unmarshal(fields["error"], &out.Error)
	out.OrderID = rawID(fields["orderId"])
	return out, nil
}

// rawID accepts string and numeric ids
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// CreateOrder sends one creation request. It never retries.
func (g *HTTPGateway) CreateOrder(ctx context.Context, submission checkout.OrderSubmission) (*checkout.OrderResult, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &checkout.SubmissionError{Message: msgTransportFailed, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &checkout.SubmissionError{Message: msgTransportFailed, StatusCode: resp.StatusCode, Err: err}
	}

	out, decodeErr := decodeCreateOrderResponse(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Success {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = msgCreateFailed
		}
		return nil, &checkout.SubmissionError{
			Message:    msg,
			StatusCode: resp.StatusCode,
			Err:        decodeErr,
		}
	}
	if out.OrderNumber == "" {
		return nil, &checkout.SubmissionError{
			Message:    msgCreateFailed,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response carries no order number"),
		}
	}
	return &checkout.OrderResult{OrderNumber: out.OrderNumber, OrderID: out.OrderID}, nil
}

var _ checkout.OrderGateway = (*HTTPGateway)(nil)
