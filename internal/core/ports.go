package core

import (
	"context"
)

// Assistant is the outbound port to the remote assistant endpoint. One call
// per user turn, single attempt, no internal retry; the controller enforces
// the single-in-flight invariant.
type Assistant interface {
	// Send dispatches one user utterance plus the active mode and returns
	// the normalized reply. Implementations must enforce their own timeout
	// and must never return a reply with nil collections.
	Send(ctx context.Context, text string, mode Mode) (*Reply, error)
}

// InlineRenderer turns plain markdown into inline-safe HTML, with the
// wrapping paragraph tags stripped so messages sit inline rather than in
// their own block. Implementations must be pure: same input, same output,
// no side effects.
type InlineRenderer interface {
	RenderInline(text string) (string, error)
}
