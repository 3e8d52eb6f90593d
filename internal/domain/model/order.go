package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// total = Σ(明細単価×数量) + shipping_fee + tax - discount
type Order struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            int64           `gorm:"not null;index" json:"user_id"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Total             decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	ShippingFee       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"shipping_fee"`
	Tax               decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"tax"`
	Discount          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount"`
	ShippingAddressID *int64          `json:"shipping_address_id"`
	Notes             string          `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}
