package model

import "github.com/shopspring/decimal"

// 購入時点の単価を保存する。商品が削除されてもproduct_idがNULLになるだけ
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID           *int64          `json:"product_id"`
	VariantID           *int64          `json:"variant_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
}
