package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/i18n"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names.
const (
	PageProducts = "products"
	PageOrders   = "orders"
)

// NavLink is one entry of the sidebar page switcher.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// Labels are the translated static texts of the page templates.
type Labels struct {
	Title        string
	SelectStore  string
	CurrentStore string
	Language     string
	Pages        string
	NoStore      string
	Stock        string
	Quantity     string
	NotAvailable string
	NoOrders     string
	DownloadCSV  string
	DownloadXLSX string
}

func newLabels(p *i18n.Printer) Labels {
	return Labels{
		Title:        p.T(i18n.KeyTitle),
		SelectStore:  p.T(i18n.KeySelectStore),
		CurrentStore: p.T(i18n.KeyCurrentStore),
		Language:     p.T(i18n.KeyLanguage),
		Pages:        p.T(i18n.KeyPages),
		NoStore:      p.T(i18n.KeyNoStore),
		Stock:        p.T(i18n.KeyStock),
		Quantity:     p.T(i18n.KeyQuantity),
		NotAvailable: p.T(i18n.KeyNotAvailable),
		NoOrders:     p.T(i18n.KeyNoOrders),
		DownloadCSV:  p.T(i18n.KeyDownloadCSV),
		DownloadXLSX: p.T(i18n.KeyDownloadXLSX),
	}
}

// Layout is the data shared by every page.
type Layout struct {
	T            *i18n.Printer
	Labels       Labels
	Heading      string
	Path         string
	Stores       []catalog.Store
	CurrentStore catalog.Store
	HasStore     bool
	Languages    []i18n.Language
	Nav          []NavLink
	Flash        string
	Errors       []string
}

// ProductsPage renders a product grid.
type ProductsPage struct {
	Layout
	EmailMode bool
	Grid      Grid
}

// OrdersPage renders the event log.
type OrdersPage struct {
	Layout
	Orders []orders.Order
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	layout, err := template.New("layout.html").ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{PageProducts, PageOrders} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		tpl, err := clone.ParseFS(templatesFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return &Renderer{pages: pages}, nil
}

// Render executes page into w. The output is buffered so a template error
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Routes of the three pages.
const (
	PathProducts        = "/products"
	PathSpecialProducts = "/special-products"
	PathOrders          = "/orders"
)

// NewLayout fills the shared sidebar data for the session.
func NewLayout(tr *i18n.Translator, sess session.Context, cat *catalog.Catalog, path string) Layout {
	p := tr.Printer(sess.Lang())
	layout := Layout{
		T:         p,
		Labels:    newLabels(p),
		Path:      path,
		Stores:    cat.Stores,
		Languages: tr.Languages(),
	}
	if store, ok := cat.Store(sess.StoreNumber); ok {
		layout.CurrentStore = store
		layout.HasStore = true
	}
	for _, link := range []struct{ key, href string }{
		{i18n.KeyProducts, PathProducts},
		{i18n.KeySpecialProducts, PathSpecialProducts},
		{i18n.KeyAllOrders, PathOrders},
	} {
		label := p.T(link.key)
		if link.href == path {
			layout.Heading = label
		}
		layout.Nav = append(layout.Nav, NavLink{Label: label, Href: link.href, Active: link.href == path})
	}
	return layout
}
