// Package assistant implements the HTTP client for the remote assistant
// endpoint. One request per user turn, a hard client-side timeout, and
// defensive normalization of whatever the endpoint returns.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mfalkner/partdesk/internal/core"
	"github.com/mfalkner/partdesk/internal/logging"
)

// DefaultTimeout is the hard client-side deadline for one assistant call.
const DefaultTimeout = 25 * time.Second

// Bound on how much of an error body is read for the error message.
const maxErrorBody = 8 << 10

// Config configures the assistant client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the remote assistant endpoint. It holds no per-call state:
// each Send builds a fresh request with its own cancellable context.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger.WithComponent("assistant")
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates an assistant client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("assistant: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// chatRequest is the wire body for POST /api/chat. Mode is a pointer so an
// unset mode serializes as null rather than "".
type chatRequest struct {
	Message string  `json:"message"`
	Mode    *string `json:"mode"`
}

// chatResponse defers every optional field to raw JSON so a malformed field
// degrades to its default instead of failing the whole decode.
type chatResponse struct {
	Answer     json.RawMessage `json:"answer"`
	Products   json.RawMessage `json:"products"`
	Orders     json.RawMessage `json:"orders"`
	FollowUp   json.RawMessage `json:"follow_up"`
	References json.RawMessage `json:"references"`
}

// Send implements core.Assistant. Single attempt, no retry, no caching;
// concurrency control is the controller's job.
func (c *Client) Send(ctx context.Context, text string, mode core.Mode) (*core.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := chatRequest{Message: text}
	if mode.IsSet() {
		m := string(mode)
		payload.Mode = &m
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, core.ErrInternal("encoding chat request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, core.ErrInternal("building chat request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("assistant request timed out", "timeout", c.timeout)
			return nil, core.ErrTimeout(fmt.Sprintf("no response within %s", c.timeout)).WithCause(err)
		}
		c.logger.Warn("assistant request failed", "error", err)
		return nil, core.ErrNetwork("assistant endpoint unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body may be empty, plain text, or JSON; it is only ever used as
		// opaque error text.
		msg := readErrorBody(resp.Body)
		c.logger.Warn("assistant returned error status",
			"status", resp.StatusCode,
			"duration", time.Since(start),
		)
		return nil, core.ErrBackend(resp.StatusCode, msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrNetwork("reading assistant response").WithCause(err)
	}

	var wire chatResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, core.ErrInternal("assistant response is not valid JSON").WithCause(err)
	}

	reply := normalize(wire)
	c.logger.Debug("assistant reply",
		"duration", time.Since(start),
		"products", len(reply.Products),
		"orders", len(reply.Orders),
	)
	return reply, nil
}

// normalize reshapes the wire response into a Reply whose collections are
// always present. A field that is missing or not sequence-shaped becomes an
// empty slice; it never propagates as an error.
func normalize(wire chatResponse) *core.Reply {
	reply := core.EmptyReply()

	if len(wire.Answer) > 0 {
		var s string
		if err := json.Unmarshal(wire.Answer, &s); err == nil {
			reply.Answer = s
		}
	}
	if len(wire.Products) > 0 {
		var ps []core.Product
		if err := json.Unmarshal(wire.Products, &ps); err == nil && ps != nil {
			reply.Products = ps
		}
	}
	if len(wire.Orders) > 0 {
		var orders []core.Order
		if err := json.Unmarshal(wire.Orders, &orders); err == nil && orders != nil {
			reply.Orders = orders
		}
	}
	if len(wire.FollowUp) > 0 {
		var fs []string
		if err := json.Unmarshal(wire.FollowUp, &fs); err == nil && fs != nil {
			reply.FollowUp = fs
		}
	}
	if len(wire.References) > 0 {
		var rs []string
		if err := json.Unmarshal(wire.References, &rs); err == nil && rs != nil {
			reply.References = rs
		}
	}
	return reply
}

func readErrorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
