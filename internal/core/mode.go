// Package core contains the domain model for the support-chat widget:
// conversation turns, support modes, normalized assistant replies, and the
// ports the rest of the application plugs into.
package core

// Mode is the closed category of support intent. A conversation starts with
// ModeUnset and transitions exactly once to one of the fixed values.
type Mode string

const (
	ModeUnset   Mode = ""
	ModeCatalog Mode = "catalog"
	ModeOrders  Mode = "orders"
	ModeIssues  Mode = "issues"
	ModeOther   Mode = "other"
)

// Modes lists the selectable modes in presentation order.
func Modes() []Mode {
	return []Mode{ModeCatalog, ModeOrders, ModeIssues, ModeOther}
}

// ParseMode maps a mode identifier to a Mode. The set is closed: anything
// outside it is rejected.
func ParseMode(id string) (Mode, error) {
	switch Mode(id) {
	case ModeCatalog, ModeOrders, ModeIssues, ModeOther:
		return Mode(id), nil
	}
	return ModeUnset, ErrInvalidMode(id)
}

// Label returns the human-facing label shown on the mode pill.
func (m Mode) Label() string {
	switch m {
	case ModeCatalog:
		return "Product Catalog"
	case ModeOrders:
		return "Order Support"
	case ModeIssues:
		return "Product Issues"
	case ModeOther:
		return "Something Else"
	}
	return ""
}

// Ack returns the canned assistant acknowledgement appended right after the
// mode is chosen.
func (m Mode) Ack() string {
	switch m {
	case ModeCatalog:
		return "Great! Ask me to find parts by part/model/brand."
	case ModeOrders:
		return "Sure, share the email used for the order to see your history."
	case ModeIssues:
		return "Okay, describe the issue or ask about install/compatibility."
	case ModeOther:
		return "Alright, tell me what you need and I'll point you in the right direction."
	}
	return ""
}

// IsSet reports whether a mode has been chosen.
func (m Mode) IsSet() bool { return m != ModeUnset }

// Fixed conversation strings. The transcript contract depends on these being
// stable: tests and the web widget match on them verbatim.
const (
	Greeting       = "What do you need help with today?"
	SelectModeHint = "Please select Product Catalog, Order Support, or Product Issues."
	ApologyMessage = "Sorry, something went wrong."
)
