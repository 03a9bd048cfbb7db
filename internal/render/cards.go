package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/mfalkner/partdesk/internal/core"
)

// turnTemplate is the presentation-facing projection of one turn: the message
// bubble, product cards, and up to five order cards.
const turnTemplate = `{{if .Content -}}
<div class="message {{.Role}}-message">{{.Content}}</div>
{{end -}}
{{if .Products -}}
<div class="product-grid">
{{- range .Products}}
  <div class="product-card" data-key="{{.Key}}">
    <div class="pc-title">{{.Title}}</div>
    {{- if .Meta}}
    <div class="pc-meta">{{.Meta}}</div>
    {{- end}}
    {{- if .PartID}}
    <div class="pc-id">Part: {{.PartID}}</div>
    {{- end}}
    {{- if .Price}}
    <div class="pc-price">{{.Price}}</div>
    {{- end}}
  </div>
{{- end}}
</div>
{{end -}}
{{if .Orders -}}
<div class="order-list">
{{- range .Orders}}
  <div class="order-card">
    <div class="oc-head"><strong>{{.OrderID}}</strong>{{if .Status}} • {{.Status}}{{end}}{{if .CreatedAt}} • {{.CreatedAt}}{{end}}</div>
    {{- if .Items}}
    <ul class="oc-items">
      {{- range .Items}}
      <li>{{.}}</li>
      {{- end}}
    </ul>
    {{- end}}
  </div>
{{- end}}
</div>
{{end -}}`

// HTML projects turns into widget markup.
type HTML struct {
	inline core.InlineRenderer
	tmpl   *template.Template
}

// NewHTML creates the turn renderer around an injected inline markdown
// capability.
func NewHTML(inline core.InlineRenderer) (*HTML, error) {
	tmpl, err := template.New("turn").Parse(turnTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing turn template: %w", err)
	}
	return &HTML{inline: inline, tmpl: tmpl}, nil
}

type turnView struct {
	Role     string
	Content  template.HTML
	Products []productView
	Orders   []orderView
}

type productView struct {
	Key    string
	Title  string
	Meta   string
	PartID string
	Price  string
}

type orderView struct {
	OrderID   string
	Status    string
	CreatedAt string
	Items     []string
}

// Turn renders one transcript turn as HTML.
func (h *HTML) Turn(turn core.Turn) (string, error) {
	content, err := h.inline.RenderInline(turn.Content)
	if err != nil {
		return "", err
	}

	view := turnView{
		Role:    string(turn.Role),
		Content: template.HTML(content), //nolint:gosec // sanitized by the inline renderer
	}

	for _, p := range turn.Products {
		pv := productView{
			Key:    p.Key(),
			Title:  p.Title,
			Meta:   joinMeta(p.Brand, p.Category),
			PartID: p.PartID,
		}
		if p.Price != nil {
			pv.Price = fmt.Sprintf("$%.2f", *p.Price)
		}
		view.Products = append(view.Products, pv)
	}

	for i, o := range turn.Orders {
		if i == core.MaxOrdersShown {
			break
		}
		ov := orderView{OrderID: o.OrderID, Status: o.Status, CreatedAt: o.CreatedAt}
		for _, it := range o.Items {
			ov.Items = append(ov.Items, itemLine(it))
		}
		view.Orders = append(view.Orders, ov)
	}

	var b strings.Builder
	if err := h.tmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("rendering turn: %w", err)
	}
	return b.String(), nil
}

func joinMeta(parts ...string) string {
	var present []string
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, " • ")
}

func itemLine(it core.OrderItem) string {
	line := fmt.Sprintf("%s ×%d", it.Title, it.Qty)
	if it.PartID != "" {
		line += fmt.Sprintf(" (Part %s)", it.PartID)
	}
	if it.Price != nil {
		line += fmt.Sprintf(" — $%.2f", *it.Price)
	}
	return line
}
