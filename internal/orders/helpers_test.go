package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/migrate"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.Up(context.Background(), sqlDB, config.DBDriverSQLite))
	return db
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 9, 15, 0, 0, time.Local)
	return func() time.Time { return at }
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Stores: []catalog.Store{
			{Number: "100", Name: "Zürich HB", LangCode: "D"},
			{Number: "200", Name: "Genève", LangCode: "F"},
		},
		Standard: []catalog.Product{
			{Kind: enums.CatalogStandard, SAPNumber: "4711", Name: "Mug", Stock: 10, QuantityOptions: []int{1, 2, 5}},
			{Kind: enums.CatalogStandard, Row: 1, SAPNumber: "4712", Name: "Cap", Stock: 0, QuantityOptions: []int{1}},
		},
		Special: []catalog.Product{
			{Kind: enums.CatalogSpecial, SAPNumber: "9001", Name: "Banner", Stock: 3, QuantityOptions: []int{1}, NotificationEmail: "m@example.com"},
		},
	}
}
