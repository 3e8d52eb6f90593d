package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// メール確認・パスワード再設定トークンの保存先。
// 1ユーザー1目的につき有効なトークンは1つ（再発行で古いものは無効）
type TokenStore interface {
	Issue(ctx context.Context, purpose model.TokenPurpose, userID int64, token string, ttl time.Duration) error

	//使い捨て。存在しない・期限切れはErrNotFound
	Consume(ctx context.Context, purpose model.TokenPurpose, token string) (int64, error)
}
