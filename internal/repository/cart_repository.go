package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	//商品・バリエーションと結合した明細（id順）
	ListDetailedByUserID(ctx context.Context, userID int64) ([]model.CartLineDetail, error)

	// 同一(商品,バリエーション)は数量を加算
	Upsert(ctx context.Context, userID int64, productID int64, variantID *int64, addQty int64) error

	FindByID(ctx context.Context, lineID int64) (model.CartLine, error)
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, lineID int64) error

	//ユーザーのカートを空にして削除件数を返す
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
