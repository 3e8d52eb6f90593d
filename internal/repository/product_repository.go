package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error)
	CreateVariant(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error)
	DeleteVariant(ctx context.Context, variantID int64) error

	ListReviews(ctx context.Context, productID int64) ([]model.ProductReview, error)
	CreateReview(ctx context.Context, r model.ProductReview) (model.ProductReview, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Delete(ctx context.Context, id int64) error
}
