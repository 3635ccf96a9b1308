package session

import (
	"testing"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/stretchr/testify/assert"
)

var (
	zurich = catalog.Store{Number: "100", Name: "Zürich HB", LangCode: "D"}
	geneva = catalog.Store{Number: "200", Name: "Genève", LangCode: "F"}
)

func TestContextTransitions(t *testing.T) {
	var c Context
	assert.Equal(t, enums.SessionNoStore, c.State())
	assert.Equal(t, "en", c.Lang())

	c = c.SelectStore(zurich)
	assert.Equal(t, enums.SessionStoreDefault, c.State())
	assert.Equal(t, "de", c.Lang())

	c = c.SetLanguage("it")
	assert.Equal(t, enums.SessionOverride, c.State())
	assert.Equal(t, "it", c.Lang())

	// selecting a store always drops the override
	c = c.SelectStore(geneva)
	assert.Equal(t, enums.SessionStoreDefault, c.State())
	assert.Equal(t, "fr", c.Lang())
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	base := Context{}.SelectStore(zurich).Acknowledge(enums.CatalogStandard, "4711")

	next := base.Acknowledge(enums.CatalogSpecial, "9001")
	_ = base.SetLanguage("fr")

	assert.Len(t, base.Acknowledged, 1)
	assert.Len(t, next.Acknowledged, 2)
	assert.Equal(t, "de", base.Language)
	assert.False(t, base.LanguageOverridden)
}

func TestAcknowledgementsAreScopedToStoreAndKind(t *testing.T) {
	c := Context{}.SelectStore(zurich).Acknowledge(enums.CatalogStandard, "4711")

	assert.True(t, c.IsAcknowledged(enums.CatalogStandard, "4711"))
	assert.False(t, c.IsAcknowledged(enums.CatalogSpecial, "4711"))
	assert.False(t, c.IsAcknowledged(enums.CatalogStandard, "4712"))

	other := c.SelectStore(geneva)
	assert.False(t, other.IsAcknowledged(enums.CatalogStandard, "4711"))
	back := other.SelectStore(zurich)
	assert.True(t, back.IsAcknowledged(enums.CatalogStandard, "4711"))

	assert.Len(t, c.Acknowledge(enums.CatalogStandard, "4711").Acknowledged, 1, "acknowledging twice is idempotent")
}

func TestFreshSessionHasNoAcknowledgements(t *testing.T) {
	var c Context
	assert.False(t, c.SelectStore(zurich).IsAcknowledged(enums.CatalogStandard, "4711"))
}

func TestEnsureStore(t *testing.T) {
	cat := &catalog.Catalog{Stores: []catalog.Store{zurich, geneva}}

	c := Context{}.EnsureStore(cat)
	assert.Equal(t, "100", c.StoreNumber)
	assert.Equal(t, "de", c.Language)

	kept := Context{}.SelectStore(geneva).SetLanguage("en").EnsureStore(cat)
	assert.Equal(t, "200", kept.StoreNumber)
	assert.Equal(t, "en", kept.Language)

	gone := Context{StoreNumber: "999"}.EnsureStore(cat)
	assert.Equal(t, "100", gone.StoreNumber)

	empty := Context{}.EnsureStore(&catalog.Catalog{})
	assert.Equal(t, enums.SessionNoStore, empty.State())
}

func TestFlashIsOneShot(t *testing.T) {
	c := Context{}.SelectStore(zurich).WithFlash("SAP-Nummer nicht gefunden.")

	msg, next := c.TakeFlash()
	assert.Equal(t, "SAP-Nummer nicht gefunden.", msg)
	assert.Empty(t, next.Flash)
	assert.Equal(t, "SAP-Nummer nicht gefunden.", c.Flash, "receiver keeps its flash")

	msg, _ = next.TakeFlash()
	assert.Empty(t, msg)
}
