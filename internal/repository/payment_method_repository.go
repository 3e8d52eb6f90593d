package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type PaymentMethodRepository interface {
	// IsDefault なら同じユーザーのほかの行を false にしてから作る
	Create(ctx context.Context, pm model.PaymentMethod) (model.PaymentMethod, error)

	//デフォルトが先頭
	ListByUserID(ctx context.Context, userID int64) ([]model.PaymentMethod, error)

	// 本人の行でなければ ErrNotFound
	Delete(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) error
}
