// Package session carries a browser's store and language selection between
// requests as an immutable value.
package session

import (
	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/i18n"
)

// Ack marks a product row whose last submission succeeded. It is scoped to the
// store that submitted it.
type Ack struct {
	StoreNumber string            `json:"store_number"`
	Kind        enums.CatalogKind `json:"kind"`
	SAPNumber   string            `json:"sap_number"`
}

// Context is the per-session state. Transitions return a new value and never
// modify the receiver.
type Context struct {
	StoreNumber        string `json:"store_number,omitempty"`
	Language           string `json:"language,omitempty"`
	LanguageOverridden bool   `json:"language_overridden,omitempty"`
	Acknowledged       []Ack  `json:"acknowledged,omitempty"`
	Flash              string `json:"flash,omitempty"`
}

// State reports where the session is in the selection flow.
func (c Context) State() enums.SessionState {
	switch {
	case c.StoreNumber == "":
		return enums.SessionNoStore
	case c.LanguageOverridden:
		return enums.SessionOverride
	default:
		return enums.SessionStoreDefault
	}
}

// Lang is the active language, English until a store is chosen.
func (c Context) Lang() string {
	if c.Language == "" {
		return i18n.Default
	}
	return c.Language
}

// SelectStore switches to store and always re-applies the store's default
// language, discarding any earlier override.
func (c Context) SelectStore(store catalog.Store) Context {
	next := c.clone()
	next.StoreNumber = store.Number
	next.Language = store.DefaultLanguage()
	next.LanguageOverridden = false
	return next
}

// SetLanguage records an explicit language choice.
func (c Context) SetLanguage(lang string) Context {
	next := c.clone()
	next.Language = lang
	next.LanguageOverridden = true
	return next
}

// Acknowledge marks the row for the current store.
func (c Context) Acknowledge(kind enums.CatalogKind, sapNumber string) Context {
	if c.IsAcknowledged(kind, sapNumber) {
		return c
	}
	next := c.clone()
	next.Acknowledged = append(next.Acknowledged, Ack{StoreNumber: c.StoreNumber, Kind: kind, SAPNumber: sapNumber})
	return next
}

// IsAcknowledged reports whether the row was acknowledged for the current store.
func (c Context) IsAcknowledged(kind enums.CatalogKind, sapNumber string) bool {
	for _, a := range c.Acknowledged {
		if a.StoreNumber == c.StoreNumber && a.Kind == kind && a.SAPNumber == sapNumber {
			return true
		}
	}
	return false
}

// EnsureStore selects the first catalog store when none is chosen yet, or
// when the chosen store disappeared from the catalog.
func (c Context) EnsureStore(cat *catalog.Catalog) Context {
	if c.StoreNumber != "" {
		if _, ok := cat.Store(c.StoreNumber); ok {
			return c
		}
	}
	first, ok := cat.FirstStore()
	if !ok {
		return c
	}
	return c.SelectStore(first)
}

// WithFlash stores a one-shot message for the next page render.
func (c Context) WithFlash(msg string) Context {
	next := c.clone()
	next.Flash = msg
	return next
}

// TakeFlash returns the pending message and a context without it.
func (c Context) TakeFlash() (string, Context) {
	if c.Flash == "" {
		return "", c
	}
	next := c.clone()
	next.Flash = ""
	return c.Flash, next
}

func (c Context) clone() Context {
	next := c
	if c.Acknowledged != nil {
		next.Acknowledged = make([]Ack, len(c.Acknowledged), len(c.Acknowledged)+1)
		copy(next.Acknowledged, c.Acknowledged)
	}
	return next
}
