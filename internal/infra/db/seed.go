package db

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeedOptions struct {
	SampleData bool

	// 両方あるときだけ管理者を作る
	AdminEmail        string
	AdminPasswordHash string
	AdminBalance      decimal.Decimal
}

type sampleProduct struct {
	name, image, description, sku, category string
	price                                   string
	stock                                   int64
}

var sampleCategories = []model.Category{
	{Name: "Beverages", Description: "Drinks and coffee"},
	{Name: "Bakery", Description: "Cakes and pastries"},
}

var sampleProducts = []sampleProduct{
	{"Bac Xiu", "images/bacxiu.jpg", "Vietnamese iced coffee with condensed milk", "SKU-BACXIU", "Beverages", "18.00", 50},
	{"Caphe Sua", "images/caphesua.jpg", "Traditional Vietnamese coffee with milk", "SKU-CAPHESUA", "Beverages", "20.00", 60},
	{"Tra Dao", "images/tradao.jpg", "Peach tea with real fruit", "SKU-TRADAO", "Beverages", "22.00", 40},
	{"Banh Bong Lan", "images/banhbonglan.jpg", "Soft sponge cake", "SKU-BANHBONGLAN", "Bakery", "25.00", 30},
	{"Banh Chocolate", "images/banhchocolate.jpg", "Rich chocolate cake", "SKU-BANHCHOCOLATE", "Bakery", "28.00", 25},
}

// 何度実行しても同じ状態になる
func Seed(ctx context.Context, gdb *gorm.DB, opts SeedOptions) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.SampleData {
			if err := seedCatalog(tx); err != nil {
				return err
			}
		}
		if opts.AdminEmail != "" && opts.AdminPasswordHash != "" {
			if err := seedAdmin(tx, opts); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedCatalog(tx *gorm.DB) error {
	categoryIDs := map[string]int64{}
	for _, c := range sampleCategories {
		c := c
		if err := tx.Where(model.Category{Name: c.Name}).
			Attrs(model.Category{Description: c.Description}).
			FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		categoryIDs[c.Name] = c.ID
	}

	for _, sp := range sampleProducts {
		catID := categoryIDs[sp.category]
		sku := sp.sku
		p := model.Product{
			Name:          sp.name,
			Price:         decimal.RequireFromString(sp.price),
			Image:         sp.image,
			Description:   sp.description,
			SKU:           &sku,
			StockQuantity: sp.stock,
			CategoryID:    &catID,
		}
		//skuが既にあれば何もしない
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", sp.name, err)
		}
	}
	return nil
}

func seedAdmin(tx *gorm.DB, opts SeedOptions) error {
	admin := model.User{
		Email:        opts.AdminEmail,
		PasswordHash: opts.AdminPasswordHash,
		Verified:     true,
		Balance:      opts.AdminBalance,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
