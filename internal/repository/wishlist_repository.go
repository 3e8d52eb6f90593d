package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistRepository interface {
	ListProductsByUserID(ctx context.Context, userID int64) ([]model.Product, error)

	// 既に入っていれば何もしない
	Add(ctx context.Context, userID int64, productID int64) error
	Remove(ctx context.Context, userID int64, productID int64) error
}
