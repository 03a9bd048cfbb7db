// Package render projects conversation turns into HTML for the web widget.
// Everything here is a pure function of its input: rendering the same turn
// twice yields byte-identical output.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Inline renders markdown to inline-safe HTML. Paragraph tags are stripped so
// messages sit inline in their bubble instead of opening their own block.
type Inline struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewInline creates the inline markdown renderer.
func NewInline() *Inline {
	return &Inline{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// RenderInline implements core.InlineRenderer.
func (r *Inline) RenderInline(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	out := r.policy.Sanitize(buf.String())
	out = strings.ReplaceAll(out, "<p>", "")
	out = strings.ReplaceAll(out, "</p>", "")
	return strings.TrimSpace(out), nil
}
