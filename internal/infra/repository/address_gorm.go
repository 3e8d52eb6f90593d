package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// 更新で書き換える列。user_id と is_default は触らない
var addressEditableColumns = []string{
	"line1", "line2", "city", "state", "postal_code", "country", "address_type", "updated_at",
}

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, translateError(err)
	}
	return address, nil
}

// デフォルトが先頭
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	list := []model.Address{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error
	return list, translateError(err)
}

func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).First(&a, addressID).Error; err != nil {
		return model.Address{}, translateError(err)
	}
	return a, nil
}

func (r *addressGormRepository) Update(ctx context.Context, userID int64, address model.Address) error {
	res := ownedRow(ctx, r.db, userID, address.ID).
		Model(&model.Address{}).
		Select(addressEditableColumns).
		Updates(&address)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *addressGormRepository) Delete(ctx context.Context, userID, addressID int64) error {
	return deleteOwned[model.Address](ctx, r.db, userID, addressID)
}

func (r *addressGormRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	return existsOwned[model.Address](ctx, r.db, userID, addressID)
}

func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return setDefaultOwned[model.Address](ctx, r.db, userID, addressID)
}
