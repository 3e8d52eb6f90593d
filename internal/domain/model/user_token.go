package model

import "time"

type TokenPurpose string

const (
	TokenPurposeVerify TokenPurpose = "verify"
	TokenPurposeReset  TokenPurpose = "reset"
)

// メール確認・パスワード再設定の使い捨てトークン。平文は保存しない
type UserToken struct {
	Purpose   TokenPurpose `gorm:"primaryKey;type:varchar(20)"`
	UserID    int64        `gorm:"primaryKey"`
	TokenHash string       `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time    `gorm:"not null;index"`
}
