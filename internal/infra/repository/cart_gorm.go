package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 商品・バリエーションと結合した明細。バリエーション無しは差分0
func (r *CartGormRepository) ListDetailedByUserID(ctx context.Context, userID int64) ([]model.CartLineDetail, error) {
	var rows []model.CartLineDetail

	err := r.db.WithContext(ctx).
		Table("cart_lines").
		Select(`cart_lines.id AS id,
			cart_lines.product_id AS product_id,
			cart_lines.variant_id AS variant_id,
			cart_lines.quantity AS quantity,
			products.name AS product_name,
			products.image AS image,
			products.price AS base_price,
			COALESCE(product_variants.variant_type, '') AS variant_type,
			COALESCE(product_variants.variant_value, '') AS variant_value,
			COALESCE(product_variants.price_modifier, 0) AS price_modifier`).
		Joins("JOIN products ON products.id = cart_lines.product_id").
		Joins("LEFT JOIN product_variants ON product_variants.id = cart_lines.variant_id").
		Where("cart_lines.user_id = ?", userID).
		Order("cart_lines.id asc").
		Scan(&rows).Error
	if err != nil {
		return []model.CartLineDetail{}, err
	}
	if rows == nil {
		rows = []model.CartLineDetail{}
	}
	return rows, nil
}

// 同一(商品,バリエーション)は数量加算
func (r *CartGormRepository) Upsert(ctx context.Context, userID int64, productID int64, variantID *int64, addQty int64) error {
	line := model.CartLine{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  addQty,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(&line).Error
	return translateError(err)
}

// 明細を取得
func (r *CartGormRepository) FindByID(ctx context.Context, lineID int64) (model.CartLine, error) {
	var line model.CartLine
	if err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&line).Error; err != nil {
		return model.CartLine{}, translateError(err)
	}
	return line, nil
}

// 明細の数量を更新
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *CartGormRepository) DeleteByID(ctx context.Context, lineID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartLine{}, lineID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カートを空にする
func (r *CartGormRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
