package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// user_id を持つテーブル（住所・支払い方法）の本人限定クエリ

func ownedRow(ctx context.Context, db *gorm.DB, userID, id int64) *gorm.DB {
	return db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
}

func existsOwned[T any](ctx context.Context, db *gorm.DB, userID, id int64) (bool, error) {
	var n int64
	if err := ownedRow(ctx, db, userID, id).Model(new(T)).Count(&n).Error; err != nil {
		return false, translateError(err)
	}
	return n == 1, nil
}

// 他人の行は見つからない扱い
func deleteOwned[T any](ctx context.Context, db *gorm.DB, userID, id int64) error {
	res := ownedRow(ctx, db, userID, id).Delete(new(T))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定行だけ is_default = true にする。ユーザー内のほかの行は false
func setDefaultOwned[T any](ctx context.Context, db *gorm.DB, userID, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := existsOwned[T](ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if !ok {
			return repo.ErrNotFound
		}
		return tx.Model(new(T)).
			Where("user_id = ?", userID).
			Update("is_default", gorm.Expr("(id = ?)", id)).Error
	})
}
