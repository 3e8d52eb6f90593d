package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//デフォルト住所が先頭
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	// user_id が一致する行だけ変更する。無ければ ErrNotFound
	Update(ctx context.Context, userID int64, address model.Address) error
	Delete(ctx context.Context, userID, addressID int64) error

	//住所がそのユーザーのものか
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)

	//デフォルト住所の切り替え
	SetDefault(ctx context.Context, userID, addressID int64) error
}
