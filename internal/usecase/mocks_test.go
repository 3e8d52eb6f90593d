package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos
// =====================

// WithinTx の中で渡す repos を固定する
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type txReposStub struct {
	users      repo.UserRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cart       repo.CartRepository
	products   repo.ProductRepository
	categories repo.CategoryRepository
	inventory  repo.InventoryRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposStub) Users() repo.UserRepository           { return r.users }
func (r *txReposStub) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposStub) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposStub) Cart() repo.CartRepository            { return r.cart }
func (r *txReposStub) Products() repo.ProductRepository     { return r.products }
func (r *txReposStub) Categories() repo.CategoryRepository  { return r.categories }
func (r *txReposStub) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposStub) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) MarkVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) LockByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) DebitBalanceIfEnough(ctx context.Context, id int64, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListDetailedByUserID(ctx context.Context, userID int64) ([]model.CartLineDetail, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLineDetail)
	return lines, args.Error(1)
}

func (m *CartRepoMock) Upsert(ctx context.Context, userID int64, productID int64, variantID *int64, addQty int64) error {
	args := m.Called(ctx, userID, productID, variantID, addQty)
	return args.Error(0)
}

func (m *CartRepoMock) FindByID(ctx context.Context, lineID int64) (model.CartLine, error) {
	args := m.Called(ctx, lineID)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartRepoMock) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	args := m.Called(ctx, lineID, qty)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteByID(ctx context.Context, lineID int64) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productID)
	vs, _ := args.Get(0).([]model.ProductVariant)
	return vs, args.Error(1)
}

func (m *ProductRepoMock) FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *ProductRepoMock) CreateVariant(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error) {
	args := m.Called(ctx, v)
	out, _ := args.Get(0).(model.ProductVariant)
	return out, args.Error(1)
}

func (m *ProductRepoMock) DeleteVariant(ctx context.Context, variantID int64) error {
	args := m.Called(ctx, variantID)
	return args.Error(0)
}

func (m *ProductRepoMock) ListReviews(ctx context.Context, productID int64) ([]model.ProductReview, error) {
	args := m.Called(ctx, productID)
	rs, _ := args.Get(0).([]model.ProductReview)
	return rs, args.Error(1)
}

func (m *ProductRepoMock) CreateReview(ctx context.Context, r model.ProductReview) (model.ProductReview, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(model.ProductReview)
	return out, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, a model.Address) (model.Address, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Address)
	return out, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, userID int64, a model.Address) error {
	args := m.Called(ctx, userID, a)
	return args.Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *AddressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type TokenStoreMock struct{ mock.Mock }

func (m *TokenStoreMock) Issue(ctx context.Context, purpose model.TokenPurpose, userID int64, token string, ttl time.Duration) error {
	args := m.Called(ctx, purpose, userID, token, ttl)
	return args.Error(0)
}

func (m *TokenStoreMock) Consume(ctx context.Context, purpose model.TokenPurpose, token string) (int64, error) {
	args := m.Called(ctx, purpose, token)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ repo.UserRepository      = (*UserRepoMock)(nil)
	_ repo.CartRepository      = (*CartRepoMock)(nil)
	_ repo.OrderRepository     = (*OrderRepoMock)(nil)
	_ repo.OrderItemRepository = (*OrderItemRepoMock)(nil)
	_ repo.ProductRepository   = (*ProductRepoMock)(nil)
	_ repo.InventoryRepository = (*InventoryRepoMock)(nil)
	_ repo.AuditLogRepository  = (*AuditRepoMock)(nil)
	_ repo.AddressRepository   = (*AddressRepoMock)(nil)
	_ repo.TokenStore          = (*TokenStoreMock)(nil)
)

// =====================
// ports
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDs struct{ id string }

func (g fixedIDs) NewID() string { return g.id }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decimalは値で比較する
func decEq(want string) interface{} {
	w := dec(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(w) })
}
