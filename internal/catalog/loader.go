package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/numfmt"
	"github.com/angelmondragon/storeshop/pkg/spreadsheet"
	"go.uber.org/multierr"
)

// Column headers of the input files.
const (
	ColStoreNumber = "Storenummer"
	ColStoreName   = "Storename"
	ColStoreLang   = "Lang"

	ColName      = "Name"
	ColImage     = "Bildname"
	ColSAPNumber = "SAP Number"
	ColStock     = "actual Stock"
	ColRemark    = "Bemerkungen"
	ColMail      = "Mail"
)

// Sources names the three input files.
type Sources struct {
	Stores          string
	Products        string
	SpecialProducts string
}

// SourcesFromConfig maps the catalog config onto file sources.
func SourcesFromConfig(cfg config.CatalogConfig) Sources {
	return Sources{
		Stores:          cfg.StoresPath,
		Products:        cfg.ProductsPath,
		SpecialProducts: cfg.SpecialProductsPath,
	}
}

// Load reads every source. A failing file leaves its table empty and is
// reported in the returned error; the catalog is always non-nil so pages can
// still render whatever did load.
func Load(src Sources) (*Catalog, error) {
	cat := &Catalog{LoadedAt: time.Now().UTC()}
	var errs error

	stores, warnings, err := loadStores(src.Stores)
	errs = multierr.Append(errs, err)
	cat.Stores = stores
	cat.Warnings = append(cat.Warnings, warnings...)

	standard, warnings, err := loadProducts(src.Products, enums.CatalogStandard)
	errs = multierr.Append(errs, err)
	cat.Standard = standard
	cat.Warnings = append(cat.Warnings, warnings...)

	special, warnings, err := loadProducts(src.SpecialProducts, enums.CatalogSpecial)
	errs = multierr.Append(errs, err)
	cat.Special = special
	cat.Warnings = append(cat.Warnings, warnings...)

	return cat, errs
}

func readTable(path string, required ...string) (*spreadsheet.Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog file path is empty")
	}
	table, err := spreadsheet.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("Datei nicht gefunden: %s", path))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("Fehler beim Laden der Datei: %s", path))
	}
	if missing := table.Missing(required...); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s: missing columns %s", path, strings.Join(missing, ", "))).
			WithDetails(map[string]any{"file": path, "missing": missing})
	}
	return table, nil
}

func loadStores(path string) ([]Store, []string, error) {
	table, err := readTable(path, ColStoreNumber, ColStoreName)
	if err != nil {
		return nil, nil, err
	}

	var (
		stores   []Store
		warnings []string
		seen     = make(map[string]struct{})
	)
	for i, row := range table.Rows {
		number := numfmt.Format(table.Value(row, ColStoreNumber))
		if number == "" {
			warnings = append(warnings, fmt.Sprintf("%s row %d: empty store number skipped", path, i+2))
			continue
		}
		if _, dup := seen[number]; dup {
			warnings = append(warnings, fmt.Sprintf("%s row %d: duplicate store %s ignored", path, i+2, number))
			continue
		}
		seen[number] = struct{}{}
		stores = append(stores, Store{
			Number:   number,
			Name:     table.Value(row, ColStoreName),
			LangCode: table.Value(row, ColStoreLang),
		})
	}
	return stores, warnings, nil
}

func quantityColumn(n int) string {
	return fmt.Sprintf("Qty %d", n)
}

func loadProducts(path string, kind enums.CatalogKind) ([]Product, []string, error) {
	table, err := readTable(path, ColName, ColImage, ColSAPNumber, ColStock)
	if err != nil {
		return nil, nil, err
	}

	var (
		products []Product
		warnings []string
		firstRow = make(map[string]int)
	)
	for i, row := range table.Rows {
		line := i + 2
		p := Product{
			Kind:              kind,
			Row:               len(products),
			SAPNumber:         numfmt.Format(table.Value(row, ColSAPNumber)),
			Name:              table.Value(row, ColName),
			Remark:            table.Value(row, ColRemark),
			ImageRef:          table.Value(row, ColImage),
			NotificationEmail: table.Value(row, ColMail),
		}

		rawStock := table.Value(row, ColStock)
		stock, ok := numfmt.WholeNumber(rawStock)
		switch {
		case !ok:
			warnings = append(warnings, fmt.Sprintf("%s row %d: stock %q treated as 0", path, line, rawStock))
			stock = 0
		case stock < 0:
			warnings = append(warnings, fmt.Sprintf("%s row %d: negative stock %d treated as 0", path, line, stock))
			stock = 0
		}
		p.Stock = int(stock)

		for n := 1; n <= MaxQuantityOptions; n++ {
			raw := table.Value(row, quantityColumn(n))
			if raw == "" {
				continue
			}
			q, err := numfmt.Quantity(raw)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s row %d: %s dropped: %v", path, line, quantityColumn(n), err))
				continue
			}
			p.QuantityOptions = append(p.QuantityOptions, q)
		}

		if p.SAPNumber != "" {
			if first, dup := firstRow[p.SAPNumber]; dup {
				warnings = append(warnings, fmt.Sprintf("%s row %d: duplicate SAP number %s, only row %d can be ordered", path, line, p.SAPNumber, first))
			} else {
				firstRow[p.SAPNumber] = line
			}
		}

		if kind == enums.CatalogSpecial && p.NotificationEmail == "" {
			warnings = append(warnings, fmt.Sprintf("%s row %d: special product %q has no Mail recipient", path, line, p.Name))
		}
		products = append(products, p)
	}
	return products, warnings, nil
}
