package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

func init() {
	migration.Register("20260301000000_create_users_table", &tables{&models.User{}})
	migration.Register("20260301000001_create_vendors_table", &tables{&models.Vendor{}})
	migration.Register("20260301000002_create_shops_table", &tables{&models.Shop{}})
	migration.Register("20260301000003_create_products_table", &tables{&models.Product{}})
	migration.Register("20260301000004_create_variants_table", &tables{&models.Variant{}})
	migration.Register("20260301000005_create_cart_lines_table", &tables{&models.CartLine{}})
	migration.Register("20260301000006_create_orders_table", &tables{&models.Order{}, &models.OrderLine{}})
	migration.Register("20260301000007_create_order_records_tables", &tables{
		&models.Payment{}, &models.Invoice{}, &models.Delivery{}, &models.Notification{},
	})
	migration.Register("20260301000008_create_failed_jobs_table", &tables{&queue.FailedJob{}})
}

// tables creates its models on Up and drops them, last first, on Down.
type tables []interface{}

func (m *tables) Up(db *gorm.DB) error {
	return db.AutoMigrate(*m...)
}

func (m *tables) Down(db *gorm.DB) error {
	models := *m
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return err
		}
	}
	return nil
}
