// Package chat implements the conversation controller: the ordered transcript
// of turns, the support-mode gate, and the single-in-flight submission logic
// around the assistant client.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/mfalkner/partdesk/internal/core"
	"github.com/mfalkner/partdesk/internal/logging"
)

// Controller owns one conversation. All state is mutated under the mutex;
// the assistant call itself runs outside it so SelectMode/readers stay
// responsive, with the busy flag guaranteeing a single outstanding request.
type Controller struct {
	mu        sync.Mutex
	assistant core.Assistant
	logger    *logging.Logger

	mode       core.Mode
	transcript []core.Turn
	busy       bool
	input      string

	onAssistant func(core.Turn)
	onChange    func()
}

// Option configures the controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.WithComponent("chat")
	}
}

// OnAssistant registers the notification fired once per appended assistant
// turn. The presentation shell uses it to drive the unread counter.
func OnAssistant(fn func(core.Turn)) Option {
	return func(c *Controller) {
		c.onAssistant = fn
	}
}

// OnChange registers the notification fired after every mutation of the
// transcript, mode, or busy flag. The shell uses it to scroll to the latest
// turn.
func OnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a controller seeded with the opening assistant greeting. The
// seed turn fires no notifications: the shell has nothing to scroll or count
// before the panel first renders.
func New(assistant core.Assistant, opts ...Option) *Controller {
	c := &Controller{
		assistant:  assistant,
		logger:     logging.NewNop(),
		transcript: []core.Turn{core.AssistantTurn(core.Greeting)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the current support mode.
func (c *Controller) Mode() core.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Busy reports whether an assistant request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Transcript returns a copy of the transcript in chronological order.
func (c *Controller) Transcript() []core.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Input returns the pending, uncommitted input text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the pending input buffer.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// SelectMode sets the support mode. Valid exactly once per conversation and
// only with an identifier from the closed mode set; on rejection the state is
// left untouched. A successful selection appends a user turn echoing the
// chosen label and the canned assistant acknowledgement.
func (c *Controller) SelectMode(id string) error {
	mode, err := core.ParseMode(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.mode.IsSet() {
		current := c.mode
		c.mu.Unlock()
		return core.ErrModeAlreadySet(current)
	}
	c.mode = mode
	c.transcript = append(c.transcript, core.UserTurn(mode.Label()))
	ack := core.AssistantTurn(mode.Ack())
	c.transcript = append(c.transcript, ack)
	c.mu.Unlock()

	c.logger.Info("mode selected", "mode", string(mode))
	c.notifyAssistant(ack)
	c.notifyChange()
	return nil
}

// Submit dispatches one user utterance to the assistant and folds the result
// into the transcript.
//
// Empty or whitespace-only text is a no-op. While a request is in flight,
// Submit fails with the busy error and changes nothing. With no mode chosen
// it appends a single instructional assistant turn and makes no network call.
// Otherwise the user turn is appended, the pending input buffer is cleared,
// and the assistant is invoked; any failure (network, timeout, non-2xx,
// undecodable body) folds into one fixed apology turn. The busy flag is
// cleared on every path before Submit returns.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return core.ErrBusy()
	}
	if !c.mode.IsSet() {
		hint := core.AssistantTurn(core.SelectModeHint)
		c.transcript = append(c.transcript, hint)
		c.mu.Unlock()
		c.notifyAssistant(hint)
		c.notifyChange()
		return nil
	}
	mode := c.mode
	c.transcript = append(c.transcript, core.UserTurn(text))
	c.input = ""
	c.busy = true
	c.mu.Unlock()
	c.notifyChange()

	reply, err := c.assistant.Send(ctx, text, mode)

	var turn core.Turn
	if err != nil {
		// The distinction between failure classes is for operators only;
		// the transcript always gets the same apology.
		c.logger.Warn("assistant call failed",
			"category", string(core.CategoryOf(err)),
			"error", err,
		)
		turn = core.AssistantTurn(core.ApologyMessage)
	} else {
		turn = core.AssistantTurnFromReply(reply)
	}

	c.mu.Lock()
	c.busy = false
	c.transcript = append(c.transcript, turn)
	c.mu.Unlock()

	c.notifyAssistant(turn)
	c.notifyChange()
	return nil
}

func (c *Controller) notifyAssistant(turn core.Turn) {
	if c.onAssistant != nil {
		c.onAssistant(turn)
	}
}

func (c *Controller) notifyChange() {
	if c.onChange != nil {
		c.onChange()
	}
}
