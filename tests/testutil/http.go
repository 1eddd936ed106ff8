package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the decoded form of the API's success/error wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
			Tag   string `json:"tag"`
		} `json:"details"`
	} `json:"error"`
}

// APIClient sends JSON requests to an http.Handler and carries the cart
// session and bearer token between calls like a browser would
type APIClient struct {
	t       *testing.T
	handler http.Handler
	base    string
	Session string
	Token   string
}

// NewAPIClient creates a client mounting every path under base, e.g. "/api/v1"
func NewAPIClient(t *testing.T, handler http.Handler, base string) *APIClient {
	return &APIClient{t: t, handler: handler, base: base}
}

// Response is a recorded API response
type Response struct {
	t        *testing.T
	Recorder *httptest.ResponseRecorder
}

// Do sends one request. body may be nil, a string or any JSON-encodable value.
func (c *APIClient) Do(method, path string, body any) *Response {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err, "Failed to marshal request body")
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, c.base+path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session != "" {
		req.Header.Set("X-Cart-Session", c.Session)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if session := w.Header().Get("X-Cart-Session"); session != "" {
		c.Session = session
	}
	return &Response{t: c.t, Recorder: w}
}

// Code returns the HTTP status code
func (r *Response) Code() int {
	return r.Recorder.Code
}

// Body returns the raw body
func (r *Response) Body() []byte {
	return r.Recorder.Body.Bytes()
}

// Envelope decodes the body as the standard wrapper
func (r *Response) Envelope() Envelope {
	r.t.Helper()
	var env Envelope
	require.NoError(r.t, json.Unmarshal(r.Body(), &env), "Failed to parse response: %s", r.Recorder.Body.String())
	return env
}

// JSON decodes the whole body into out
func (r *Response) JSON(out any) {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Body(), out), "Failed to parse response: %s", r.Recorder.Body.String())
}

// RequireSuccess asserts status and a successful envelope, decoding its data into out when out is not nil
func (r *Response) RequireSuccess(status int, out any) {
	r.t.Helper()
	require.Equal(r.t, status, r.Code(), r.Recorder.Body.String())
	if status == http.StatusNoContent {
		return
	}
	env := r.Envelope()
	require.True(r.t, env.Success, "Expected success to be true")
	if out != nil {
		require.NoError(r.t, json.Unmarshal(env.Data, out), "Failed to parse response data")
	}
}

// AssertError asserts status and an error envelope carrying code
func (r *Response) AssertError(status int, code string) {
	r.t.Helper()
	assert.Equal(r.t, status, r.Code(), r.Recorder.Body.String())
	env := r.Envelope()
	assert.False(r.t, env.Success, "Expected success to be false")
	require.NotNil(r.t, env.Error, "Expected error object in response")
	assert.Equal(r.t, code, env.Error.Code, "Unexpected error code")
}
