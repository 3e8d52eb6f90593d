package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	tx         *TxManagerMock
	users      *UserRepoMock
	cart       *CartRepoMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	addresses  *AddressRepoMock
	uc         *CheckoutUsecase
	now        time.Time
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		users:      new(UserRepoMock),
		cart:       new(CartRepoMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		addresses:  new(AddressRepoMock),
		now:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.tx = &TxManagerMock{Repos: &txReposStub{
		users:      f.users,
		cart:       f.cart,
		orders:     f.orders,
		orderItems: f.orderItems,
	}}
	f.uc = NewCheckoutUsecase(f.tx, f.users, f.cart, f.addresses, fixedIDs{id: "order-1"}, fixedClock{t: f.now}, 5*time.Second)
	return f
}

// 20.00 x2 + 30.00 x1 = 70.00
func sampleCartLines() []model.CartLineDetail {
	return []model.CartLineDetail{
		{ID: 1, ProductID: 10, Quantity: 2, ProductName: "Bac Xiu", BasePrice: dec("20.00")},
		{ID: 2, ProductID: 11, Quantity: 1, ProductName: "Tra Dao", BasePrice: dec("30.00")},
	}
}

func (f *checkoutFixture) assertNoWrites(t *testing.T) {
	t.Helper()
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "DebitBalanceIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.cart.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("100.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return(sampleCartLines(), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.ID == "order-1" &&
			o.UserID == 7 &&
			o.Status == model.OrderStatusPending &&
			o.Total.Equal(dec("70.00")) &&
			o.ShippingFee.IsZero() && o.Tax.IsZero() && o.Discount.IsZero() &&
			o.CreatedAt.Equal(f.now)
	})).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, "order-1", mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].ProductNameSnapshot == "Bac Xiu" &&
			items[0].Quantity == 2 &&
			items[0].UnitPrice.Equal(dec("20.00")) &&
			*items[1].ProductID == 11
	})).Return(nil)
	f.users.On("DebitBalanceIfEnough", mock.Anything, int64(7), decEq("70.00")).Return(true, nil)
	f.cart.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(2), nil)

	out, err := f.uc.PlaceOrder(ctx, 7, PlaceOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, "order-1", out.OrderID)
	assert.Equal(t, "70.00", out.Total.StringFixed(2))

	f.tx.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.cart.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
}

func TestPlaceOrder_UsesVariantPrice(t *testing.T) {
	f := newCheckoutFixture()
	variantID := int64(3)

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("100.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return([]model.CartLineDetail{
		{ID: 1, ProductID: 10, VariantID: &variantID, Quantity: 3, ProductName: "Tra Dao", BasePrice: dec("22.00"), PriceModifier: dec("1.50")},
	}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Total.Equal(dec("70.50"))
	})).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, "order-1", mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].UnitPrice.Equal(dec("23.50")) && *items[0].VariantID == variantID
	})).Return(nil)
	f.users.On("DebitBalanceIfEnough", mock.Anything, int64(7), decEq("70.50")).Return(true, nil)
	f.cart.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(1), nil)

	out, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, "70.50", out.Total.StringFixed(2))
}

func TestPlaceOrder_InsufficientFunds_NoWrites(t *testing.T) {
	f := newCheckoutFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("50.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return(sampleCartLines(), nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	var ife *InsufficientFundsError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, "50.00", ife.Balance.StringFixed(2))
	assert.Equal(t, "70.00", ife.Total.StringFixed(2))
	assert.Equal(t, "20.00", ife.Shortfall().StringFixed(2))

	f.assertNoWrites(t)
}

func TestPlaceOrder_EmptyCart_NoWrites(t *testing.T) {
	f := newCheckoutFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("100.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return([]model.CartLineDetail{}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	f.assertNoWrites(t)
}

// 同じ状態で2回呼んでも同じ失敗になる
func TestPlaceOrder_RepeatedFailureIsIdentical(t *testing.T) {
	f := newCheckoutFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("50.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return(sampleCartLines(), nil)

	_, err1 := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	_, err2 := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})

	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
	assert.ErrorIs(t, err2, ErrInsufficientFunds)

	f.tx.AssertNumberOfCalls(t, "WithinTx", 2)
	f.assertNoWrites(t)
}

func TestPlaceOrder_PersistenceFailureIsWrapped(t *testing.T) {
	f := newCheckoutFixture()
	dbErr := errors.New("connection reset")

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("100.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return(sampleCartLines(), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderPersistence)
	assert.ErrorIs(t, err, dbErr)

	var pe *OrderPersistenceError
	assert.True(t, errors.As(err, &pe))

	f.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "DebitBalanceIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.cart.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

// 残高チェック後に条件付きUPDATEで弾かれた場合も残高不足
func TestPlaceOrder_DebitRejected(t *testing.T) {
	f := newCheckoutFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("100.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return(sampleCartLines(), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, "order-1", mock.Anything).Return(nil)
	f.users.On("DebitBalanceIfEnough", mock.Anything, int64(7), decEq("70.00")).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	f.cart.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	f := newCheckoutFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(nil, repo.ErrNotFound)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
	f.cart.AssertNotCalled(t, "ListDetailedByUserID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_RunsUnderDeadline(t *testing.T) {
	f := newCheckoutFixture()

	f.tx.On("WithinTx", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil)
	f.users.On("LockByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("100.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return([]model.CartLineDetail{}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	f.tx.AssertExpectations(t)
}

func TestPlaceOrder_ShippingAddressMustBeOwned(t *testing.T) {
	f := newCheckoutFixture()
	addrID := int64(99)

	f.addresses.On("IsOwnedByUser", mock.Anything, addrID, int64(7)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{ShippingAddressID: &addrID})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPlaceOrder_NotesTooLong(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{Notes: strings.Repeat("a", 501)})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPreview(t *testing.T) {
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Balance: dec("50.00")}, nil)
	f.cart.On("ListDetailedByUserID", mock.Anything, int64(7)).Return(sampleCartLines(), nil)

	out, err := f.uc.Preview(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "70.00", out.Total)
	assert.Equal(t, "50.00", out.Balance)
	assert.False(t, out.Sufficient)
	assert.Equal(t, "20.00", out.Shortfall)
	assert.Len(t, out.Items, 2)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestClassifyCheckoutError(t *testing.T) {
	ife := &InsufficientFundsError{Balance: decimal.NewFromInt(1), Total: decimal.NewFromInt(2)}

	assert.Equal(t, ErrEmptyCart, classifyCheckoutError(ErrEmptyCart))
	assert.Equal(t, error(ife), classifyCheckoutError(ife))
	assert.ErrorIs(t, classifyCheckoutError(context.DeadlineExceeded), ErrOrderPersistence)
	assert.ErrorIs(t, classifyCheckoutError(context.DeadlineExceeded), context.DeadlineExceeded)
}
