package model

import "time"

type WishlistItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ProductID int64     `gorm:"not null" json:"product_id"`
	AddedAt   time.Time `gorm:"not null" json:"added_at"`
}
