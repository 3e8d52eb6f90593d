package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。email重複はErrConflict
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error

	MarkVerified(ctx context.Context, userID int64) error

	//パスワード更新。同時にverifiedにしてtoken_versionを+1する
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error

	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error

	//トランザクション内で行ロック（SELECT ... FOR UPDATE）して取得
	LockByID(ctx context.Context, userID int64) (*model.User, error)

	//残高が足りるときだけ減算。足りなければfalse
	DebitBalanceIfEnough(ctx context.Context, userID int64, amount decimal.Decimal) (bool, error)
}
