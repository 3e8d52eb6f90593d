package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// 価格は常に現在の商品価格から計算する
type CartLineView struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Variant   string `json:"variant"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	Items []CartLineView `json:"items"`
	Total string         `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// カート取得
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカートに追加（同一商品・同一バリエーションは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// バリエーションはその商品のものだけ
	if in.VariantID != nil {
		v, err := u.productRepo.FindVariantByID(ctx, *in.VariantID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && v.ProductID != in.ProductID) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
		}
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := u.cartRepo.Upsert(ctx, userID, in.ProductID, in.VariantID, in.Quantity); err != nil {
		//追加中に商品が消えた
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量変更。0なら削除
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, lineID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	if err := u.ensureOwned(ctx, userID, lineID); err != nil {
		return CartResponse{}, err
	}

	var err error
	if in.Quantity == 0 {
		err = u.cartRepo.DeleteByID(ctx, lineID)
	} else {
		err = u.cartRepo.UpdateQuantity(ctx, lineID, in.Quantity)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, lineID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.ensureOwned(ctx, userID, lineID); err != nil {
		return CartResponse{}, err
	}

	if err := u.cartRepo.DeleteByID(ctx, lineID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 他人の明細は「存在しない扱い」
func (u *CartUsecase) ensureOwned(ctx context.Context, userID int64, lineID int64) error {
	line, err := u.cartRepo.FindByID(ctx, lineID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if line.UserID != userID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	lines, err := u.cartRepo.ListDetailedByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return CartResponse{
		Items: toCartLineViews(lines),
		Total: money(sumLines(lines)),
	}, nil
}

func toCartLineViews(lines []model.CartLineDetail) []CartLineView {
	out := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		variant := ""
		if l.VariantID != nil {
			variant = l.VariantType + ": " + l.VariantValue
		}
		out = append(out, CartLineView{
			ID:        l.ID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      l.ProductName,
			Image:     l.Image,
			Variant:   variant,
			UnitPrice: money(l.UnitPrice()),
			Quantity:  l.Quantity,
			LineTotal: money(l.LineTotal()),
		})
	}
	return out
}
