package model

import "time"

const (
	PaymentTypeCard   = "card"
	PaymentTypeBank   = "bank"
	PaymentTypeWallet = "wallet"
)

// 保存済みの支払い方法。番号は下4桁だけ持つ
type PaymentMethod struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"not null;index" json:"user_id"`
	PaymentType string `gorm:"type:varchar(20);not null" json:"payment_type"`
	Provider    string `gorm:"type:varchar(100);not null" json:"provider"`

	AccountLast4 string `gorm:"column:account_last4;type:varchar(4);not null" json:"-"`

	//MM/YY。カード以外は空
	ExpiryDate string `gorm:"type:varchar(5);not null;default:''" json:"expiry_date"`

	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
