package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const maxOrderNotesLen = 500

// カートから注文を確定する
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	cart      repo.CartRepository
	addresses repo.AddressRepository
	ids       IDGenerator
	clock     Clock
	timeout   time.Duration
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	cart repo.CartRepository,
	addresses repo.AddressRepository,
	ids IDGenerator,
	clock Clock,
	timeout time.Duration,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		users:     users,
		cart:      cart,
		addresses: addresses,
		ids:       ids,
		clock:     clock,
		timeout:   timeout,
	}
}

type PlaceOrderInput struct {
	ShippingAddressID *int64
	Notes             string
}

type PlaceOrderOutput struct {
	OrderID string
	Total   decimal.Decimal
}

// PlaceOrder はユーザーのカートを1つの注文にする。
//
// 1トランザクションで ユーザー行ロック→カート読込→残高確認→注文/明細作成→残高減算→カート削除 を行う。
// 返すエラーは ErrEmptyCart / *InsufficientFundsError / *OrderPersistenceError か、
// 入力不正の *HTTPError。失敗時は何も書き込まれない。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if userID <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	notes := strings.TrimSpace(in.Notes)
	if len([]rune(notes)) > maxOrderNotesLen {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "notes too long")
	}

	if in.ShippingAddressID != nil {
		if *in.ShippingAddressID <= 0 {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_address_id")
		}
		owned, err := u.addresses.IsOwnedByUser(ctx, *in.ShippingAddressID, userID)
		if err != nil {
			return PlaceOrderOutput{}, &OrderPersistenceError{Err: err}
		}
		if !owned {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusNotFound, "address not found")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var out PlaceOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じユーザーの決済はここで順番待ちになる
		user, err := r.Users().LockByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if err != nil {
			return err
		}

		lines, err := r.Cart().ListDetailedByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := sumLines(lines)
		if total.GreaterThan(user.Balance) {
			return &InsufficientFundsError{Balance: user.Balance, Total: total}
		}

		now := u.clock.Now()
		orderID := u.ids.NewID()

		if err := r.Orders().Create(ctx, model.Order{
			ID:                orderID,
			UserID:            userID,
			Status:            model.OrderStatusPending,
			Total:             total,
			ShippingFee:       decimal.Zero,
			Tax:               decimal.Zero,
			Discount:          decimal.Zero,
			ShippingAddressID: in.ShippingAddressID,
			Notes:             notes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}); err != nil {
			return err
		}

		//購入時点の単価と商品名を残す
		items := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			productID := l.ProductID
			items = append(items, model.OrderItem{
				ProductID:           &productID,
				VariantID:           l.VariantID,
				ProductNameSnapshot: l.ProductName,
				Quantity:            l.Quantity,
				UnitPrice:           l.UnitPrice(),
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}

		ok, err := r.Users().DebitBalanceIfEnough(ctx, userID, total)
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientFundsError{Balance: user.Balance, Total: total}
		}

		if _, err := r.Cart().DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		out = PlaceOrderOutput{OrderID: orderID, Total: total}
		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, classifyCheckoutError(err)
	}
	return out, nil
}

// 想定内のエラー以外はすべて保存失敗として包む
func classifyCheckoutError(err error) error {
	if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrInsufficientFunds) {
		return err
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return &OrderPersistenceError{Err: err}
}

type CheckoutPreview struct {
	Items      []CartLineView `json:"items"`
	Total      string         `json:"total"`
	Balance    string         `json:"balance"`
	Sufficient bool           `json:"sufficient"`
	Shortfall  string         `json:"shortfall"`
}

// GET /checkout 確定前の確認。何も書き込まない
func (u *CheckoutUsecase) Preview(ctx context.Context, userID int64) (CheckoutPreview, error) {
	if userID <= 0 {
		return CheckoutPreview{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutPreview{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return CheckoutPreview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines, err := u.cart.ListDetailedByUserID(ctx, userID)
	if err != nil {
		return CheckoutPreview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	total := sumLines(lines)
	shortfall := decimal.Zero
	if total.GreaterThan(user.Balance) {
		shortfall = total.Sub(user.Balance)
	}

	return CheckoutPreview{
		Items:      toCartLineViews(lines),
		Total:      money(total),
		Balance:    money(user.Balance),
		Sufficient: shortfall.IsZero(),
		Shortfall:  money(shortfall),
	}, nil
}
