package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// balanceは前払いのストアクレジット。注文確定時にだけ減る
type User struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string          `gorm:"type:varchar(100);not null;default:''" json:"first_name"`
	LastName     string          `gorm:"type:varchar(100);not null;default:''" json:"last_name"`
	Phone        string          `gorm:"type:varchar(30);not null;default:''" json:"phone"`
	Verified     bool            `gorm:"not null;default:false" json:"verified"`
	Balance      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance"`
	Role         Role            `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	TokenVersion int             `gorm:"not null;default:0" json:"token_version"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time      `json:"last_login_at"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}
