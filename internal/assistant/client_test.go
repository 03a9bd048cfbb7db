package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfalkner/partdesk/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestSend_RequestShape(t *testing.T) {
	var got struct {
		Message string  `json:"message"`
		Mode    *string `json:"mode"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	})

	reply, err := c.Send(context.Background(), "dishwasher filter", core.ModeCatalog)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Answer)
	assert.Equal(t, "dishwasher filter", got.Message)
	require.NotNil(t, got.Mode)
	assert.Equal(t, "catalog", *got.Mode)
}

func TestSend_UnsetModeSerializesAsNull(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Send(context.Background(), "hello", core.ModeUnset)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw["mode"]))
}

func TestSend_NormalizesMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"just text"}`))
	})

	reply, err := c.Send(context.Background(), "hi", core.ModeCatalog)
	require.NoError(t, err)
	assert.Equal(t, "just text", reply.Answer)
	assert.NotNil(t, reply.Products)
	assert.NotNil(t, reply.Orders)
	assert.NotNil(t, reply.FollowUp)
	assert.NotNil(t, reply.References)
	assert.Empty(t, reply.Products)
	assert.Empty(t, reply.Orders)
	assert.Empty(t, reply.FollowUp)
	assert.Empty(t, reply.References)
}

func TestSend_NormalizesMalformedFields(t *testing.T) {
	// Every optional field has the wrong shape; each must degrade to its
	// default instead of failing the turn.
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"answer": 42,
			"products": "not a list",
			"orders": {"order_id": "A1"},
			"follow_up": 7,
			"references": null
		}`))
	})

	reply, err := c.Send(context.Background(), "hi", core.ModeOrders)
	require.NoError(t, err)
	assert.Equal(t, "", reply.Answer)
	assert.Empty(t, reply.Products)
	assert.Empty(t, reply.Orders)
	assert.Empty(t, reply.FollowUp)
	assert.Empty(t, reply.References)
}

func TestSend_ParsesFullReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"answer": "Here are matches",
			"products": [{"title":"Filter A","part_id":"PS123","price":19.99}],
			"orders": [{"order_id":"A1","status":"shipped","created_at":"2024-05-01","items":[{"title":"Filter A","qty":2,"price":19.99}]}],
			"follow_up": ["Check compatibility"],
			"references": ["faq-12"]
		}`))
	})

	reply, err := c.Send(context.Background(), "dishwasher filter", core.ModeCatalog)
	require.NoError(t, err)
	assert.Equal(t, "Here are matches", reply.Answer)
	require.Len(t, reply.Products, 1)
	assert.Equal(t, "Filter A", reply.Products[0].Title)
	assert.Equal(t, "PS123", reply.Products[0].PartID)
	require.NotNil(t, reply.Products[0].Price)
	assert.InDelta(t, 19.99, *reply.Products[0].Price, 0.001)
	require.Len(t, reply.Orders, 1)
	assert.Equal(t, "A1", reply.Orders[0].OrderID)
	require.Len(t, reply.Orders[0].Items, 1)
	assert.Equal(t, 2, reply.Orders[0].Items[0].Qty)
	assert.Equal(t, []string{"Check compatibility"}, reply.FollowUp)
	assert.Equal(t, []string{"faq-12"}, reply.References)
}

func TestSend_NonSuccessStatusCarriesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := c.Send(context.Background(), "hi", core.ModeIssues)
	require.Error(t, err)
	var de *core.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, core.ErrCatBackend, de.Category)
	assert.Contains(t, de.Message, "upstream exploded")
}

func TestSend_NonSuccessStatusEmptyBodyFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Send(context.Background(), "hi", core.ModeIssues)
	require.Error(t, err)
	var de *core.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Backend error (503)", de.Message)
}

func TestSend_InvalidJSONBodyIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	})

	_, err := c.Send(context.Background(), "hi", core.ModeCatalog)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatInternal, core.CategoryOf(err))
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Send(context.Background(), "hi", core.ModeCatalog)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatTimeout, core.CategoryOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSend_Unreachable(t *testing.T) {
	// Reserve a port, then close it so the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Send(context.Background(), "hi", core.ModeCatalog)
	require.Error(t, err)
	assert.Equal(t, core.ErrCatNetwork, core.CategoryOf(err))
	assert.True(t, core.IsRetryable(err))
}
