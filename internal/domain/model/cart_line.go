package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// (user, product, variant)で一意。数量は1以上
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ProductID int64     `gorm:"not null" json:"product_id"`
	VariantID *int64    `json:"variant_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カート明細を商品・バリエーションと結合した行
type CartLineDetail struct {
	ID            int64
	ProductID     int64
	VariantID     *int64
	Quantity      int64
	ProductName   string
	Image         string
	BasePrice     decimal.Decimal
	VariantType   string
	VariantValue  string
	PriceModifier decimal.Decimal
}

// 単価 = 商品価格 + バリエーション差分
func (d CartLineDetail) UnitPrice() decimal.Decimal {
	return d.BasePrice.Add(d.PriceModifier)
}

func (d CartLineDetail) LineTotal() decimal.Decimal {
	return d.UnitPrice().Mul(decimal.NewFromInt(d.Quantity))
}
