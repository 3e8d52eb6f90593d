package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type paymentMethodGormRepository struct {
	db *gorm.DB
}

func NewPaymentMethodGormRepository(db *gorm.DB) repo.PaymentMethodRepository {
	return &paymentMethodGormRepository{db: db}
}

func (r *paymentMethodGormRepository) Create(ctx context.Context, pm model.PaymentMethod) (model.PaymentMethod, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if pm.IsDefault {
			if err := tx.Model(&model.PaymentMethod{}).
				Where("user_id = ? AND is_default = TRUE", pm.UserID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&pm).Error
	})
	if err != nil {
		return model.PaymentMethod{}, translateError(err)
	}
	return pm, nil
}

func (r *paymentMethodGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentMethod, error) {
	list := []model.PaymentMethod{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error
	return list, translateError(err)
}

func (r *paymentMethodGormRepository) Delete(ctx context.Context, userID, id int64) error {
	return deleteOwned[model.PaymentMethod](ctx, r.db, userID, id)
}

func (r *paymentMethodGormRepository) SetDefault(ctx context.Context, userID, id int64) error {
	return setDefaultOwned[model.PaymentMethod](ctx, r.db, userID, id)
}
