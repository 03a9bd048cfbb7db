package core

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry. Turns are immutable once appended; the
// transcript is append-only and its order is chronological.
type Turn struct {
	Role     Role      `json:"role"`
	Content  string    `json:"content"`
	Products []Product `json:"products,omitempty"`
	Orders   []Order   `json:"orders,omitempty"`
	FollowUp []string  `json:"follow_up,omitempty"`
}

// UserTurn builds a plain user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds a text-only assistant turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// AssistantTurnFromReply folds a normalized reply into one assistant turn.
func AssistantTurnFromReply(r *Reply) Turn {
	return Turn{
		Role:     RoleAssistant,
		Content:  r.Answer,
		Products: r.Products,
		Orders:   r.Orders,
		FollowUp: r.FollowUp,
	}
}

// Product is a catalog item surfaced in an assistant turn.
type Product struct {
	Title    string   `json:"title"`
	PartID   string   `json:"part_id,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Category string   `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

// Key returns the stable display identity: the part id when present,
// otherwise the title.
func (p Product) Key() string {
	if p.PartID != "" {
		return p.PartID
	}
	return p.Title
}

// Order is one order summary surfaced in an assistant turn.
type Order struct {
	OrderID   string      `json:"order_id"`
	Status    string      `json:"status,omitempty"`
	CreatedAt string      `json:"created_at,omitempty"`
	Items     []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Title  string   `json:"title"`
	Qty    int      `json:"qty"`
	PartID string   `json:"part_id,omitempty"`
	Price  *float64 `json:"price,omitempty"`
}

// MaxOrdersShown bounds how many orders of a reply are surfaced to the user.
// Overflow is truncated silently; it is a display-size bound, not an error.
const MaxOrdersShown = 5

// Reply is the normalized assistant response. Every slice is non-nil: the
// assistant client substitutes empty slices for missing or malformed fields
// so rendering code can assume the shape unconditionally.
type Reply struct {
	Answer     string    `json:"answer"`
	Products   []Product `json:"products"`
	Orders     []Order   `json:"orders"`
	FollowUp   []string  `json:"follow_up"`
	References []string  `json:"references"`
}

// EmptyReply returns a reply with all collections present and empty.
func EmptyReply() *Reply {
	return &Reply{
		Products:   []Product{},
		Orders:     []Order{},
		FollowUp:   []string{},
		References: []string{},
	}
}
