package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/mfalkner/partdesk/internal/core"
)

// Static presentation data for the storefront sections. Pure rendering with
// no state machine behind it; the chat widget is the only dynamic piece of
// the page.
type storefrontData struct {
	Title      string
	Tagline    string
	Phone      string
	Hours      string
	Categories []category
	Brands     []string
	Tiles      []tile
	CTAs       []string
	Modes      []modePill
	Year       int
}

type category struct {
	Key   string
	Label string
	Icon  string
}

type tile struct {
	Title string
	Blurb string
}

type modePill struct {
	ID    string
	Label string
}

func defaultStorefrontData() storefrontData {
	return storefrontData{
		Title:   "PartDesk",
		Tagline: "Here to help since 1999",
		Phone:   "1-866-319-8402",
		Hours:   "Mon-Sat • 8am-8pm EST",
		Categories: []category{
			{Key: "dishwasher", Label: "Dishwasher", Icon: "🧼"},
			{Key: "dryer", Label: "Dryer", Icon: "🌀"},
			{Key: "stove", Label: "Stove", Icon: "🍳"},
			{Key: "refrigerator", Label: "Refrigerator", Icon: "🧊"},
			{Key: "washer", Label: "Washer", Icon: "🧺"},
		},
		Brands: []string{"GE Appliances", "Whirlpool", "Frigidaire", "Samsung", "KitchenAid", "LG"},
		Tiles: []tile{
			{Title: "Model Number Locator", Blurb: "Find your model number quickly with our locator."},
			{Title: "Repair Videos", Blurb: "Clear, easy-to-follow instructions from our experts."},
			{Title: "Customer Support", Blurb: "Mon-Sat support by email or phone."},
		},
		CTAs: []string{"Find Your Model #", "Create Account", "Check Order Status"},
		Year: time.Now().Year(),
	}
}

func (s *Server) parseTemplates() error {
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html.tmpl")
	if err != nil {
		return fmt.Errorf("parsing storefront templates: %w", err)
	}
	s.storefront = tmpl
	return nil
}

func (s *Server) handleStorefront(w http.ResponseWriter, _ *http.Request) {
	data := defaultStorefrontData()
	for _, m := range core.Modes() {
		data.Modes = append(data.Modes, modePill{ID: string(m), Label: m.Label()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.storefront.ExecuteTemplate(w, "storefront.html.tmpl", data); err != nil {
		s.logger.Error("rendering storefront", "error", err)
	}
}
