package usecase

import (
	"context"
	"io"
	"time"

	"storefront/internal/domain/model"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 平文パスワードからハッシュへ。照合もここ
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// メール確認・パスワード再設定用の推測できない文字列
type SecretGenerator interface {
	NewSecret() (string, error)
}

// 確認・再設定リンクの送り先（メール送信はしない）
type LinkNotifier interface {
	NotifyVerification(ctx context.Context, email string, link string) error
	NotifyPasswordReset(ctx context.Context, email string, link string) error
}

type StoredImage struct {
	Name string    `json:"name"`
	URL  string    `json:"url"`
	Size int64     `json:"size"`
	At   time.Time `json:"uploaded_at"`
}

// 商品画像の保存先
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (StoredImage, error)
	List(ctx context.Context) ([]StoredImage, error)
}
