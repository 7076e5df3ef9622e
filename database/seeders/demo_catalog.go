package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

func init() {
	Register("demo_catalog", seedDemoCatalog)
}

// seedDemoCatalog creates one approved vendor with a shop, a customer and a
// handful of products. Running it twice is a no-op.
func seedDemoCatalog(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Shop{}).Where("name = ?", "Demo Bazaar").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	store := repositories.New(db)

	owner := &models.User{Name: "Demo Vendor", Email: "vendor@bazaar.test", Phone: "+15550000001", Role: models.RoleVendor}
	customer := &models.User{Name: "Demo Customer", Email: "customer@bazaar.test", Phone: "+15550000002"}
	for _, u := range []*models.User{owner, customer} {
		if err := u.SetPassword("password123"); err != nil {
			return err
		}
		if err := store.Users.Create(ctx, u); err != nil {
			return err
		}
	}

	vendor := &models.Vendor{UserID: owner.ID, BusinessName: "Demo Traders", Phone: "+15550000001", Status: models.VendorApproved}
	if err := store.Vendors.Create(ctx, vendor); err != nil {
		return err
	}

	shop := &models.Shop{
		VendorID: vendor.ID, Name: "Demo Bazaar", Address: "1 Market Street",
		Phone: "+15550000001", Status: models.ShopApproved,
		OpeningHours: `{"mon-fri":"09:00-18:00"}`,
	}
	if err := store.Shops.Create(ctx, shop); err != nil {
		return err
	}

	catalog := []struct {
		name     string
		price    string
		stock    int
		discount int
		sizes    []string
	}{
		{"Cotton T-Shirt", "1500.00", 40, 0, []string{"S", "M", "L", "XL"}},
		{"Denim Jacket", "4500.00", 12, 10, nil},
		{"Leather Wallet", "900.00", 3, 0, nil},
		{"Canvas Sneakers", "2500.00", 0, 0, nil},
	}
	for _, c := range catalog {
		p := models.NewProduct(shop.ID, c.name, decimal.RequireFromString(c.price), c.stock)
		if err := p.SetDiscount(c.discount); err != nil {
			return err
		}
		if err := store.Catalog.Create(ctx, p); err != nil {
			return err
		}
		for _, size := range c.sizes {
			adj := decimal.Zero
			if size == "XL" {
				adj = decimal.NewFromInt(100)
			}
			v := models.NewVariant(p.ID, models.Attributes{models.AttrSize: size}, adj, 10)
			if err := store.Catalog.CreateVariant(ctx, v); err != nil {
				return err
			}
		}
	}
	return nil
}
