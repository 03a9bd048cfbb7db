package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfalkner/partdesk/internal/core"
)

// fakeAssistant implements core.Assistant for controller tests.
type fakeAssistant struct {
	mu      sync.Mutex
	calls   int
	lastMsg string
	lastMod core.Mode
	reply   *core.Reply
	err     error
	block   chan struct{} // when set, Send blocks until closed
}

func (f *fakeAssistant) Send(_ context.Context, text string, mode core.Mode) (*core.Reply, error) {
	f.mu.Lock()
	f.calls++
	f.lastMsg = text
	f.lastMod = mode
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	r := core.EmptyReply()
	r.Answer = "ok"
	return r, nil
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNew_SeedsGreeting(t *testing.T) {
	c := New(&fakeAssistant{})

	turns := c.Transcript()
	require.Len(t, turns, 1)
	assert.Equal(t, core.RoleAssistant, turns[0].Role)
	assert.Equal(t, core.Greeting, turns[0].Content)
	assert.Equal(t, core.ModeUnset, c.Mode())
	assert.False(t, c.Busy())
}

func TestSelectMode_AppendsEchoAndAck(t *testing.T) {
	c := New(&fakeAssistant{})

	require.NoError(t, c.SelectMode("catalog"))

	turns := c.Transcript()
	require.Len(t, turns, 3)
	assert.Equal(t, core.RoleUser, turns[1].Role)
	assert.Equal(t, "Product Catalog", turns[1].Content)
	assert.Equal(t, core.RoleAssistant, turns[2].Role)
	assert.Equal(t, core.ModeCatalog.Ack(), turns[2].Content)
	assert.Equal(t, core.ModeCatalog, c.Mode())
}

func TestSelectMode_RejectsUnknownIDAndLeavesStateUnchanged(t *testing.T) {
	c := New(&fakeAssistant{})

	err := c.SelectMode("billing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidMode("billing")))
	assert.Equal(t, core.ModeUnset, c.Mode())
	assert.Len(t, c.Transcript(), 1)
}

func TestSelectMode_TransitionsExactlyOnce(t *testing.T) {
	c := New(&fakeAssistant{})

	require.NoError(t, c.SelectMode("orders"))
	err := c.SelectMode("issues")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrModeAlreadySet(core.ModeOrders)))
	assert.Equal(t, core.ModeOrders, c.Mode())
	assert.Len(t, c.Transcript(), 3)
}

func TestSubmit_EmptyTextIsNoOp(t *testing.T) {
	fa := &fakeAssistant{}
	c := New(fa)
	require.NoError(t, c.SelectMode("catalog"))

	require.NoError(t, c.Submit(context.Background(), "   "))
	require.NoError(t, c.Submit(context.Background(), ""))

	assert.Len(t, c.Transcript(), 3)
	assert.Zero(t, fa.callCount())
}

func TestSubmit_ModeUnsetAppendsHintWithoutNetworkCall(t *testing.T) {
	fa := &fakeAssistant{}
	c := New(fa)

	require.NoError(t, c.Submit(context.Background(), "hello"))

	turns := c.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, core.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Please select Product Catalog, Order Support, or Product Issues.", turns[1].Content)
	assert.Zero(t, fa.callCount())
	assert.Equal(t, core.ModeUnset, c.Mode())
	assert.False(t, c.Busy())
}

func TestSubmit_SuccessAppendsUserAndAssistantTurn(t *testing.T) {
	price := 19.99
	fa := &fakeAssistant{reply: &core.Reply{
		Answer:     "Here are matches",
		Products:   []core.Product{{Title: "Filter A", PartID: "PS123", Price: &price}},
		Orders:     []core.Order{},
		FollowUp:   []string{"Check compatibility"},
		References: []string{},
	}}
	c := New(fa)
	require.NoError(t, c.SelectMode("catalog"))
	c.SetInput("dishwasher filter")

	require.NoError(t, c.Submit(context.Background(), c.Input()))

	turns := c.Transcript()
	require.Len(t, turns, 5)
	assert.Equal(t, core.RoleUser, turns[3].Role)
	assert.Equal(t, "dishwasher filter", turns[3].Content)
	assert.Equal(t, core.RoleAssistant, turns[4].Role)
	assert.Equal(t, "Here are matches", turns[4].Content)
	require.Len(t, turns[4].Products, 1)
	assert.Equal(t, "PS123", turns[4].Products[0].Key())
	assert.Equal(t, []string{"Check compatibility"}, turns[4].FollowUp)

	assert.Equal(t, 1, fa.callCount())
	assert.Equal(t, core.ModeCatalog, fa.lastMod)
	assert.False(t, c.Busy())
	assert.Empty(t, c.Input(), "pending input is cleared before the call")
}

func TestSubmit_TrimsTextBeforeSending(t *testing.T) {
	fa := &fakeAssistant{}
	c := New(fa)
	require.NoError(t, c.SelectMode("issues"))

	require.NoError(t, c.Submit(context.Background(), "  door seal leaks \n"))

	assert.Equal(t, "door seal leaks", fa.lastMsg)
	assert.Equal(t, "door seal leaks", c.Transcript()[3].Content)
}

func TestSubmit_FailureAppendsApologyAndClearsBusy(t *testing.T) {
	for name, sendErr := range map[string]error{
		"network": core.ErrNetwork("connection refused"),
		"timeout": core.ErrTimeout("no response within 25s"),
		"backend": core.ErrBackend(502, "upstream exploded"),
		"plain":   errors.New("boom"),
	} {
		t.Run(name, func(t *testing.T) {
			fa := &fakeAssistant{err: sendErr}
			c := New(fa)
			require.NoError(t, c.SelectMode("orders"))

			require.NoError(t, c.Submit(context.Background(), "where is my order"))

			turns := c.Transcript()
			require.Len(t, turns, 5)
			assert.Equal(t, "Sorry, something went wrong.", turns[4].Content,
				"raw error text must never reach the transcript")
			assert.False(t, c.Busy())
		})
	}
}

func TestSubmit_FailureDiscardsPendingInput(t *testing.T) {
	// Deliberate source behavior: the buffer is cleared before the network
	// call, so a failed send loses the typed text.
	fa := &fakeAssistant{err: core.ErrNetwork("unreachable")}
	c := New(fa)
	require.NoError(t, c.SelectMode("catalog"))
	c.SetInput("ice maker PS11752778")

	require.NoError(t, c.Submit(context.Background(), c.Input()))

	assert.Empty(t, c.Input())
}

func TestSubmit_BusyGateRejectsConcurrentSubmission(t *testing.T) {
	block := make(chan struct{})
	fa := &fakeAssistant{block: block}
	c := New(fa)
	require.NoError(t, c.SelectMode("catalog"))

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background(), "first")
	}()

	// Wait for the first submission to take the busy gate.
	require.Eventually(t, c.Busy, time.Second, time.Millisecond)

	err := c.Submit(context.Background(), "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrBusy()))

	close(block)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
	assert.Equal(t, 1, fa.callCount())

	// Only the first submission reached the transcript.
	var users []string
	for _, turn := range c.Transcript() {
		if turn.Role == core.RoleUser && turn.Content != core.ModeCatalog.Label() {
			users = append(users, turn.Content)
		}
	}
	assert.Equal(t, []string{"first"}, users)
}

func TestNotifications(t *testing.T) {
	var assistantTurns []core.Turn
	changes := 0
	fa := &fakeAssistant{}
	c := New(fa,
		OnAssistant(func(turn core.Turn) { assistantTurns = append(assistantTurns, turn) }),
		OnChange(func() { changes++ }),
	)

	require.NoError(t, c.SelectMode("catalog"))
	require.NoError(t, c.Submit(context.Background(), "hello"))

	// One ack from mode selection, one reply from the submission. The seed
	// greeting fires nothing.
	require.Len(t, assistantTurns, 2)
	assert.Equal(t, core.ModeCatalog.Ack(), assistantTurns[0].Content)
	assert.Equal(t, "ok", assistantTurns[1].Content)
	assert.GreaterOrEqual(t, changes, 3, "mode change, busy transition, reply append")
}

func TestExportMarkdown(t *testing.T) {
	price := 19.99
	fa := &fakeAssistant{reply: &core.Reply{
		Answer:     "Here are matches",
		Products:   []core.Product{{Title: "Filter A", PartID: "PS123", Price: &price}},
		Orders:     []core.Order{{OrderID: "A1", Status: "shipped", Items: []core.OrderItem{{Title: "Filter A", Qty: 2}}}},
		FollowUp:   []string{},
		References: []string{},
	}}
	c := New(fa)
	require.NoError(t, c.SelectMode("catalog"))
	require.NoError(t, c.Submit(context.Background(), "dishwasher filter"))

	path := filepath.Join(t.TempDir(), "transcript.md")
	require.NoError(t, c.ExportMarkdown(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "# Support chat transcript\n"))
	assert.Contains(t, out, "**You:** dishwasher filter")
	assert.Contains(t, out, "**Assistant:** Here are matches")
	assert.Contains(t, out, "- Filter A (Part PS123) — $19.99")
	assert.Contains(t, out, "- Order A1 • shipped")
	assert.Contains(t, out, "  - Filter A ×2")
}
