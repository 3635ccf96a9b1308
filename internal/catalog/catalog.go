// Package catalog loads the store list and both product catalogs from
// spreadsheet files and serves them read-only to the rest of the shop.
package catalog

import (
	"fmt"
	"time"

	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/i18n"
)

// MaxQuantityOptions is the number of "Qty n" columns read per product.
const MaxQuantityOptions = 4

// Store is one row of the store list.
type Store struct {
	Number   string `json:"store_number"`
	Name     string `json:"store_name"`
	LangCode string `json:"lang_code"`
}

// DefaultLanguage maps the store's Lang column onto a UI language.
func (s Store) DefaultLanguage() string {
	return i18n.StoreLanguage(s.LangCode)
}

// Label is the "<number> - <name>" text used in selectors.
func (s Store) Label() string {
	return fmt.Sprintf("%s - %s", s.Number, s.Name)
}

// Product is one row of a product catalog.
type Product struct {
	Kind              enums.CatalogKind `json:"kind"`
	Row               int               `json:"row"`
	SAPNumber         string            `json:"sap_number"`
	Name              string            `json:"name"`
	Remark            string            `json:"remark,omitempty"`
	ImageRef          string            `json:"image_ref"`
	Stock             int               `json:"stock"`
	QuantityOptions   []int             `json:"quantity_options"`
	NotificationEmail string            `json:"notification_email,omitempty"`
}

// HasRemark reports whether the remark has visible content.
func (p Product) HasRemark() bool {
	return p.Remark != ""
}

// Available reports whether stock is left.
func (p Product) Available() bool {
	return p.Stock > 0
}

// Orderable reports whether the card offers a quantity selector.
func (p Product) Orderable() bool {
	return p.Available() && len(p.QuantityOptions) > 0 && p.SAPNumber != ""
}

// AllowsQuantity reports whether q is one of the configured options.
func (p Product) AllowsQuantity(q int) bool {
	for _, opt := range p.QuantityOptions {
		if opt == q {
			return true
		}
	}
	return false
}

// Catalog is an immutable snapshot of all three input tables.
type Catalog struct {
	Stores   []Store   `json:"stores"`
	Standard []Product `json:"standard"`
	Special  []Product `json:"special"`
	Warnings []string  `json:"warnings,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store finds a store by number.
func (c *Catalog) Store(number string) (Store, bool) {
	if c == nil {
		return Store{}, false
	}
	for _, s := range c.Stores {
		if s.Number == number {
			return s, true
		}
	}
	return Store{}, false
}

// FirstStore is the store preselected for a fresh session.
func (c *Catalog) FirstStore() (Store, bool) {
	if c == nil || len(c.Stores) == 0 {
		return Store{}, false
	}
	return c.Stores[0], true
}

// Products returns the rows of the requested catalog.
func (c *Catalog) Products(kind enums.CatalogKind) []Product {
	if c == nil {
		return nil
	}
	switch kind {
	case enums.CatalogSpecial:
		return c.Special
	case enums.CatalogStandard:
		return c.Standard
	}
	return nil
}

// Product finds a row by SAP number. The first match wins.
func (c *Catalog) Product(kind enums.CatalogKind, sapNumber string) (Product, bool) {
	if sapNumber == "" {
		return Product{}, false
	}
	for _, p := range c.Products(kind) {
		if p.SAPNumber == sapNumber {
			return p, true
		}
	}
	return Product{}, false
}
