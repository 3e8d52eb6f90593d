package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Image         string          `gorm:"type:text;not null;default:''" json:"image"`
	Description   string          `gorm:"type:text;not null;default:''" json:"description"`
	SKU           *string         `gorm:"column:sku;type:varchar(100);uniqueIndex" json:"sku"`
	StockQuantity int64           `gorm:"not null;default:0" json:"stock_quantity"`
	CategoryID    *int64          `gorm:"index" json:"category_id"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// サイズ・色など。価格は親商品の価格に加算する差分
type ProductVariant struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64           `gorm:"not null;index" json:"product_id"`
	VariantType   string          `gorm:"type:varchar(50);not null;default:''" json:"variant_type"`
	VariantValue  string          `gorm:"type:varchar(100);not null;default:''" json:"variant_value"`
	PriceModifier decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"price_modifier"`
	SKU           *string         `gorm:"column:sku;type:varchar(100);uniqueIndex" json:"sku"`
	StockQuantity int64           `gorm:"not null;default:0" json:"stock_quantity"`
}

type ProductReview struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	UserID    *int64    `gorm:"index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text;not null;default:''" json:"comment"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
