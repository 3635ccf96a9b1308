// Package render lays out catalog rows as product cards and renders the shop
// pages from embedded templates.
package render

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/i18n"
	"github.com/angelmondragon/storeshop/pkg/numfmt"
)

// DefaultColumns is the card grid width.
const DefaultColumns = 3

// ImageResolver decides whether a product image exists.
type ImageResolver interface {
	Exists(name string) bool
}

// DirImages resolves images under a static root directory.
type DirImages struct {
	Root string
}

// Exists reports whether name is a regular file below Root. Names that try to
// leave the root are treated as missing.
func (d DirImages) Exists(name string) bool {
	if name == "" || !fs.ValidPath(filepath.ToSlash(name)) {
		return false
	}
	info, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(name)))
	return err == nil && info.Mode().IsRegular()
}

// Card is the view model of one product tile.
type Card struct {
	Kind         enums.CatalogKind
	Index        int
	Name         string
	Remark       string
	HasRemark    bool
	ImageURL     string
	ImageWarning string
	SAPNumber    string
	Stock        string
	NotAvailable bool
	ShowSelector bool
	Options      []string
	ButtonLabel  string
	ActionURL    string
	Acknowledged bool
	SuccessText  string
}

// Grid holds cards distributed over columns.
type Grid struct {
	Columns [][]Card
}

// Empty reports whether no card was laid out.
func (g Grid) Empty() bool {
	for _, col := range g.Columns {
		if len(col) > 0 {
			return false
		}
	}
	return true
}

// BuildGrid places one card per product into column index % columns.
// emailMode selects the special-product action and success text.
func BuildGrid(products []catalog.Product, columns int, emailMode bool, sess session.Context, p *i18n.Printer, images ImageResolver) Grid {
	if columns <= 0 {
		columns = DefaultColumns
	}
	grid := Grid{Columns: make([][]Card, columns)}
	for i, product := range products {
		card := buildCard(i, product, emailMode, sess, p, images)
		grid.Columns[i%columns] = append(grid.Columns[i%columns], card)
	}
	return grid
}

func buildCard(index int, product catalog.Product, emailMode bool, sess session.Context, p *i18n.Printer, images ImageResolver) Card {
	card := Card{
		Kind:         product.Kind,
		Index:        index,
		Name:         product.Name,
		Remark:       product.Remark,
		HasRemark:    product.HasRemark(),
		SAPNumber:    numfmt.Format(product.SAPNumber),
		Stock:        numfmt.FormatInt(product.Stock),
		NotAvailable: !product.Available(),
	}

	if images != nil && images.Exists(product.ImageRef) {
		card.ImageURL = "/static/" + (&url.URL{Path: filepath.ToSlash(product.ImageRef)}).EscapedPath()
	} else {
		card.ImageWarning = p.T(i18n.KeyImageMissing, product.ImageRef)
	}

	if product.Orderable() {
		card.ShowSelector = true
		for _, q := range product.QuantityOptions {
			card.Options = append(card.Options, numfmt.FormatInt(q))
		}
		card.ButtonLabel = fmt.Sprintf("%s: %s", p.T(i18n.KeyOrder), product.Name)
		card.ActionURL = actionURL(emailMode, product.SAPNumber)
	}

	if product.SAPNumber != "" && sess.IsAcknowledged(product.Kind, product.SAPNumber) {
		card.Acknowledged = true
		if emailMode {
			card.SuccessText = p.T(i18n.KeyEmailOpened)
		} else {
			card.SuccessText = p.T(i18n.KeyOrderSuccess)
		}
	}
	return card
}

func actionURL(emailMode bool, sap string) string {
	if emailMode {
		return "/special-products/" + url.PathEscape(sap) + "/mail"
	}
	return "/products/" + url.PathEscape(sap) + "/order"
}
