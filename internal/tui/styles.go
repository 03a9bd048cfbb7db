package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mfalkner/partdesk/internal/core"
)

// Color palette, dark terminal theme.
var (
	brandColor  = lipgloss.Color("#10B981") // Green
	userColor   = lipgloss.Color("#f43f5e") // Rose
	textColor   = lipgloss.Color("#c9d1d9")
	mutedColor  = lipgloss.Color("#6b7280")
	borderColor = lipgloss.Color("#374151")
	priceColor  = lipgloss.Color("#F59E0B") // Amber
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brandColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(brandColor).
				Bold(true)

	pillStyle = lipgloss.NewStyle().
			Foreground(brandColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandColor).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Foreground(textColor).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	cardMetaStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	cardPriceStyle = lipgloss.NewStyle().
			Foreground(priceColor).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(brandColor)

	inputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(borderColor).
				Padding(0, 1)
)

// MessageStyles renders transcript turns for a given viewport width.
type MessageStyles struct {
	width int
}

// NewMessageStyles creates message styles for the given width.
func NewMessageStyles(width int) *MessageStyles {
	if width < 40 {
		width = 80
	}
	return &MessageStyles{width: width}
}

// FormatUserTurn renders a user turn.
func (s *MessageStyles) FormatUserTurn(content string) string {
	return userLabelStyle.Render("You") + "\n" + lipgloss.NewStyle().
		Foreground(textColor).
		PaddingLeft(2).
		Width(s.width-2).
		Render(content)
}

// FormatAssistantTurn renders an assistant turn. The content arrives already
// markdown-rendered; cards are appended below it.
func (s *MessageStyles) FormatAssistantTurn(content string, turn core.Turn) string {
	var sb strings.Builder
	sb.WriteString(assistantLabelStyle.Render("Assistant"))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(content, "\n"))

	for _, p := range turn.Products {
		sb.WriteString("\n")
		sb.WriteString(s.FormatProductCard(p))
	}

	orders := turn.Orders
	if len(orders) > core.MaxOrdersShown {
		orders = orders[:core.MaxOrdersShown]
	}
	for _, o := range orders {
		sb.WriteString("\n")
		sb.WriteString(s.FormatOrderCard(o))
	}

	return sb.String()
}

// FormatProductCard renders one product card.
func (s *MessageStyles) FormatProductCard(p core.Product) string {
	var lines []string
	lines = append(lines, cardTitleStyle.Render(p.Title))

	meta := make([]string, 0, 2)
	if p.Brand != "" {
		meta = append(meta, p.Brand)
	}
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	if len(meta) > 0 {
		lines = append(lines, cardMetaStyle.Render(strings.Join(meta, " • ")))
	}
	if p.PartID != "" {
		lines = append(lines, cardMetaStyle.Render("Part: "+p.PartID))
	}
	if p.Price != nil {
		lines = append(lines, cardPriceStyle.Render(fmt.Sprintf("$%.2f", *p.Price)))
	}

	return cardStyle.Width(min(s.width-4, 60)).Render(strings.Join(lines, "\n"))
}

// FormatOrderCard renders one order card.
func (s *MessageStyles) FormatOrderCard(o core.Order) string {
	var lines []string
	head := cardTitleStyle.Render(o.OrderID)
	if o.Status != "" {
		head += cardMetaStyle.Render(" • " + o.Status)
	}
	if o.CreatedAt != "" {
		head += cardMetaStyle.Render(" • " + o.CreatedAt)
	}
	lines = append(lines, head)

	for _, it := range o.Items {
		line := fmt.Sprintf("%s ×%d", it.Title, it.Qty)
		if it.PartID != "" {
			line += fmt.Sprintf(" (Part %s)", it.PartID)
		}
		if it.Price != nil {
			line += fmt.Sprintf(" — $%.2f", *it.Price)
		}
		lines = append(lines, cardMetaStyle.Render("  "+line))
	}

	return cardStyle.Width(min(s.width-4, 60)).Render(strings.Join(lines, "\n"))
}

// FormatModePills renders the mode picker row shown until a mode is chosen.
func (s *MessageStyles) FormatModePills() string {
	pills := make([]string, 0, len(core.Modes()))
	for i, m := range core.Modes() {
		pills = append(pills, pillStyle.Render(fmt.Sprintf("[%d] %s", i+1, m.Label())))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, pills...)
}
