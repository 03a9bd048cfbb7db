package chat

import (
	"fmt"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/mfalkner/partdesk/internal/core"
)

// ExportMarkdown writes the transcript to path as a markdown document. The
// write is atomic: a partially written file is never left behind.
func (c *Controller) ExportMarkdown(path string) error {
	data := []byte(TranscriptMarkdown(c.Transcript()))
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("exporting transcript: %w", err)
	}
	c.logger.Info("transcript exported", "path", path, "turns", len(c.Transcript()))
	return nil
}

// TranscriptMarkdown renders a transcript as markdown.
func TranscriptMarkdown(turns []core.Turn) string {
	var b strings.Builder
	b.WriteString("# Support chat transcript\n")

	for _, turn := range turns {
		b.WriteString("\n")
		switch turn.Role {
		case core.RoleUser:
			b.WriteString("**You:** ")
		default:
			b.WriteString("**Assistant:** ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")

		for _, p := range turn.Products {
			b.WriteString(fmt.Sprintf("- %s", p.Title))
			if p.PartID != "" {
				b.WriteString(fmt.Sprintf(" (Part %s)", p.PartID))
			}
			if p.Price != nil {
				b.WriteString(fmt.Sprintf(" — $%.2f", *p.Price))
			}
			b.WriteString("\n")
		}
		for i, o := range turn.Orders {
			if i == core.MaxOrdersShown {
				break
			}
			b.WriteString(fmt.Sprintf("- Order %s", o.OrderID))
			if o.Status != "" {
				b.WriteString(" • " + o.Status)
			}
			if o.CreatedAt != "" {
				b.WriteString(" • " + o.CreatedAt)
			}
			b.WriteString("\n")
			for _, it := range o.Items {
				b.WriteString(fmt.Sprintf("  - %s ×%d", it.Title, it.Qty))
				if it.Price != nil {
					b.WriteString(fmt.Sprintf(" — $%.2f", *it.Price))
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
