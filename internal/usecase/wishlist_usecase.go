package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "storefront/internal/repository"
)

type WishlistUsecase struct {
	wishlist repo.WishlistRepository
}

func NewWishlistUsecase(wishlist repo.WishlistRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlist: wishlist}
}

func (u *WishlistUsecase) List(ctx context.Context, userID int64) ([]ProductView, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	products, err := u.wishlist.ListProductsByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	return out, nil
}

// 2回追加しても1件
func (u *WishlistUsecase) Add(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	err := u.wishlist.Add(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	err := u.wishlist.Remove(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
