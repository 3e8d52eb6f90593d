package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/ソート/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// q nameとdescriptionを対象
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "name":
		tx = tx.Order("name asc").Order("id asc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

// 商品の更新。在庫はInventory経由でしか変えない
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image":       p.Image,
		"sku":         p.SKU,
		"category_id": p.CategoryID,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除。カート明細・バリエーションはFKでカスケード
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	var list []model.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&list).Error; err != nil {
		return []model.ProductVariant{}, err
	}
	return list, nil
}

func (r *ProductGormRepository) FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	if err := r.db.WithContext(ctx).First(&v, variantID).Error; err != nil {
		return model.ProductVariant{}, translateError(err)
	}
	return v, nil
}

func (r *ProductGormRepository) CreateVariant(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.ProductVariant{}, translateError(err)
	}
	return v, nil
}

func (r *ProductGormRepository) DeleteVariant(ctx context.Context, variantID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductVariant{}, variantID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 新しい順
func (r *ProductGormRepository) ListReviews(ctx context.Context, productID int64) ([]model.ProductReview, error) {
	var list []model.ProductReview
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Order("id desc").
		Find(&list).Error; err != nil {
		return []model.ProductReview{}, err
	}
	return list, nil
}

func (r *ProductGormRepository) CreateReview(ctx context.Context, rv model.ProductReview) (model.ProductReview, error) {
	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&rv).Error; err != nil {
		return model.ProductReview{}, translateError(err)
	}
	return rv, nil
}
