package enums

import "fmt"

// CatalogKind tells which product list a row came from. Standard products are
// persisted through the order sink, special products are routed to email.
type CatalogKind string

const (
	CatalogStandard CatalogKind = "standard"
	CatalogSpecial  CatalogKind = "special"
)

var validCatalogKinds = []CatalogKind{
	CatalogStandard,
	CatalogSpecial,
}

// String implements fmt.Stringer.
func (k CatalogKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known CatalogKind.
func (k CatalogKind) IsValid() bool {
	for _, candidate := range validCatalogKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// EmailMode reports whether submissions for this catalog compose a mail intent.
func (k CatalogKind) EmailMode() bool {
	return k == CatalogSpecial
}

// ParseCatalogKind converts raw input into a CatalogKind.
func ParseCatalogKind(value string) (CatalogKind, error) {
	for _, candidate := range validCatalogKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog kind %q", value)
}
