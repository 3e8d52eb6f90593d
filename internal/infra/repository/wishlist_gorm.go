package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) repo.WishlistRepository {
	return &wishlistGormRepository{db: db}
}

// 追加が新しい順
func (r *wishlistGormRepository) ListProductsByUserID(ctx context.Context, userID int64) ([]model.Product, error) {
	var list []model.Product
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("JOIN wishlist_items ON wishlist_items.product_id = products.id").
		Where("wishlist_items.user_id = ?", userID).
		Order("wishlist_items.added_at desc").
		Find(&list).Error
	if err != nil {
		return []model.Product{}, err
	}
	return list, nil
}

func (r *wishlistGormRepository) Add(ctx context.Context, userID int64, productID int64) error {
	item := model.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		AddedAt:   time.Now(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
	return translateError(err)
}

func (r *wishlistGormRepository) Remove(ctx context.Context, userID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
