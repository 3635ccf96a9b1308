// Package i18n holds the shop's label table and maps stores onto their
// default language.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Label keys used by the pages.
const (
	KeyTitle           = "title"
	KeySelectStore     = "select_store"
	KeyCurrentStore    = "current_store"
	KeyProducts        = "products"
	KeySpecialProducts = "special_products"
	KeyOrder           = "order"
	KeyOrderSuccess    = "order_success"
	KeyNotAvailable    = "not_available"
	KeyStock           = "stock"
	KeyQuantity        = "quantity"
	KeyAllOrders       = "all_orders"
	KeyDownloadCSV     = "download_csv"
	KeyDownloadXLSX    = "download_xlsx"
	KeyEmailOpened     = "email_opened"
	KeyImageMissing    = "image_missing"
	KeyLanguage        = "language"
	KeyPages           = "pages"
	KeyNoOrders        = "no_orders"
	KeyNoStore         = "no_store"
)

// Default is used whenever a requested language is unknown.
const Default = "en"

//go:embed labels.yaml
var labelsYAML []byte

// Language is a selectable UI language.
type Language struct {
	Tag  string `yaml:"tag" json:"tag"`
	Name string `yaml:"name" json:"name"`
}

type labelFile struct {
	Languages []Language                     `yaml:"languages"`
	Labels    map[string]map[string]string `yaml:"labels"`
}

// Translator resolves label keys for a language.
type Translator struct {
	languages []Language
	tags      []language.Tag
	matcher   language.Matcher
	catalog   *catalog.Builder
	keys      []string
}

// New builds a Translator from the embedded label table.
func New() (*Translator, error) {
	return Parse(labelsYAML)
}

// MustNew is New for package-level wiring; it panics on a broken embedded table.
func MustNew() *Translator {
	t, err := New()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse builds a Translator from a YAML label table. The first listed language
// is the fallback.
func Parse(data []byte) (*Translator, error) {
	var file labelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("labels: no languages defined")
	}

	tags := make([]language.Tag, 0, len(file.Languages))
	for _, l := range file.Languages {
		tag, err := language.Parse(l.Tag)
		if err != nil {
			return nil, fmt.Errorf("labels: language %q: %w", l.Tag, err)
		}
		tags = append(tags, tag)
	}

	builder := catalog.NewBuilder(catalog.Fallback(tags[0]))
	keys := make([]string, 0, len(file.Labels))
	for key, byLang := range file.Labels {
		keys = append(keys, key)
		for i, l := range file.Languages {
			msg, ok := byLang[l.Tag]
			if !ok {
				continue
			}
			if err := builder.SetString(tags[i], key, msg); err != nil {
				return nil, fmt.Errorf("labels: %s/%s: %w", key, l.Tag, err)
			}
		}
	}

	return &Translator{
		languages: file.Languages,
		tags:      tags,
		matcher:   language.NewMatcher(tags),
		catalog:   builder,
		keys:      keys,
	}, nil
}

// Languages lists the selectable languages in display order.
func (t *Translator) Languages() []Language {
	out := make([]Language, len(t.languages))
	copy(out, t.languages)
	return out
}

// Supported reports whether code names one of the configured languages.
func (t *Translator) Supported(code string) bool {
	for _, l := range t.languages {
		if l.Tag == code {
			return true
		}
	}
	return false
}

// Normalize maps any language code (including "de-CH" or unknown values) onto
// the closest supported one.
func (t *Translator) Normalize(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return t.languages[0].Tag
	}
	_, idx, conf := t.matcher.Match(tag)
	if conf == language.No {
		return t.languages[0].Tag
	}
	return t.languages[idx].Tag
}

// Printer returns a printer bound to the closest supported language.
func (t *Translator) Printer(code string) *Printer {
	lang := t.Normalize(code)
	tag := language.MustParse(lang)
	return &Printer{lang: lang, p: message.NewPrinter(tag, message.Catalog(t.catalog))}
}

// Keys lists every label key present in the table.
func (t *Translator) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Printer formats labels for one language.
type Printer struct {
	lang string
	p    *message.Printer
}

// Lang is the resolved language code.
func (p *Printer) Lang() string { return p.lang }

// T returns the label for key, formatting args into it.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// StoreLanguage maps a store's Lang column onto a language code.
func StoreLanguage(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "D":
		return "de"
	case "F":
		return "fr"
	case "I":
		return "it"
	default:
		return Default
	}
}
