package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	tx        *TxManagerMock
	products  *ProductRepoMock
	inventory *InventoryRepoMock
	audit     *AuditRepoMock
	uc        *ProductUsecase
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:  new(ProductRepoMock),
		inventory: new(InventoryRepoMock),
		audit:     new(AuditRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &txReposStub{
		products:  f.products,
		inventory: f.inventory,
		auditLogs: f.audit,
	}}
	f.uc = NewProductUsecase(f.products, f.tx, fixedClock{t: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	return f
}

func TestListProducts(t *testing.T) {
	f := newProductFixture()
	cat := int64(2)

	f.products.On("List", mock.Anything, repo.ProductListQuery{Page: 1, Limit: 20, Q: "cake", CategoryID: &cat, Sort: "price_asc"}).
		Return([]model.Product{{ID: 4, Name: "Banh Bong Lan", Price: dec("25")}}, int64(1), nil)

	out, err := f.uc.ListProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, Q: " cake ", CategoryID: &cat, Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "25.00", out.Items[0].Price)
	assert.Equal(t, int64(1), out.Total)
}

func TestListProducts_InvalidInput(t *testing.T) {
	f := newProductFixture()

	tests := []struct {
		name string
		in   ListProductsInput
	}{
		{name: "page", in: ListProductsInput{Page: 0, Limit: 20}},
		{name: "limit", in: ListProductsInput{Page: 1, Limit: 101}},
		{name: "sort", in: ListProductsInput{Page: 1, Limit: 20, Sort: "random"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.ListProducts(context.Background(), tt.in)
			assertHTTPStatus(t, err, http.StatusBadRequest)
		})
	}
	f.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetProductDetail(t *testing.T) {
	f := newProductFixture()

	f.products.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, Name: "Tra Dao", Price: dec("22.00")}, nil)
	f.products.On("ListVariants", mock.Anything, int64(3)).Return([]model.ProductVariant{
		{ID: 1, ProductID: 3, VariantType: "size", VariantValue: "L", PriceModifier: dec("1.50")},
	}, nil)
	f.products.On("ListReviews", mock.Anything, int64(3)).Return([]model.ProductReview{{Rating: 5}, {Rating: 4}}, nil)

	out, err := f.uc.GetProductDetail(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out.Variants, 1)
	assert.Equal(t, "23.50", out.Variants[0].UnitPrice)
	require.NotNil(t, out.AverageRating)
	assert.InDelta(t, 4.5, *out.AverageRating, 0.001)
}

func TestGetProductDetail_NotFound(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, int64(3)).Return(nil, repo.ErrNotFound)

	_, err := f.uc.GetProductDetail(context.Background(), 3)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCreateReview_RatingRange(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.CreateReview(context.Background(), 7, 3, CreateReviewInput{Rating: 6})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.products.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}

func TestAdminCreateProduct_WritesAudit(t *testing.T) {
	f := newProductFixture()
	sku := "  "

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Cafe" && p.SKU == nil && p.Price.Equal(dec("3.20"))
	})).Return(model.Product{ID: 9, Name: "Cafe", Price: dec("3.20")}, nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct && l.ResourceID == "9" && l.ActorUserID == 1 && l.BeforeJSON == ""
	})).Return(nil)

	out, err := f.uc.AdminCreateProduct(context.Background(), 1, AdminProductInput{Name: " Cafe ", Price: dec("3.20"), SKU: &sku})
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.ID)
	f.audit.AssertExpectations(t)
}

func TestAdminCreateProduct_DuplicateSKU(t *testing.T) {
	f := newProductFixture()
	sku := "SKU-1"

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("Create", mock.Anything, mock.Anything).Return(nil, repo.ErrConflict)

	_, err := f.uc.AdminCreateProduct(context.Background(), 1, AdminProductInput{Name: "Cafe", Price: dec("3.20"), SKU: &sku})
	assertHTTPStatus(t, err, http.StatusConflict)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUpdateInventory(t *testing.T) {
	f := newProductFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, StockQuantity: 10}, nil)
	f.inventory.On("SetStock", mock.Anything, int64(3), int64(4)).Return(nil)
	f.inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.Delta == -6 && a.Reason == "broken" && a.AdminUserID == 1
	})).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.BeforeJSON == `{"stock":10}` && l.AfterJSON == `{"stock":4}`
	})).Return(nil)

	err := f.uc.AdminUpdateInventory(context.Background(), 1, 3, 4, " broken ")
	require.NoError(t, err)
	f.inventory.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestAdminUpdateInventory_Validation(t *testing.T) {
	f := newProductFixture()

	err := f.uc.AdminUpdateInventory(context.Background(), 1, 3, -1, "x")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	err = f.uc.AdminUpdateInventory(context.Background(), 1, 3, 1, "  ")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminUpdateProduct(t *testing.T) {
	f := newProductFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, Name: "Lamp", Price: dec("100.00"), StockQuantity: 7}, nil)
	f.products.On("ListVariants", mock.Anything, int64(3)).Return([]model.ProductVariant{
		{ID: 1, ProductID: 3, PriceModifier: dec("-50.00")},
	}, nil)
	f.products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Lamp XL" && p.Price.Equal(dec("60.00")) && p.StockQuantity == 7
	})).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateProduct && l.ResourceID == "3"
	})).Return(nil)

	err := f.uc.AdminUpdateProduct(context.Background(), 1, 3, AdminProductInput{Name: "Lamp XL", Price: dec("60.00")})
	require.NoError(t, err)
	f.products.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

// 値下げで既存バリエーションの単価が負になる更新は通さない
func TestAdminUpdateProduct_RejectsNegativeVariantPrice(t *testing.T) {
	f := newProductFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, Name: "Lamp", Price: dec("100.00")}, nil)
	f.products.On("ListVariants", mock.Anything, int64(3)).Return([]model.ProductVariant{
		{ID: 1, ProductID: 3, PriceModifier: dec("5.00")},
		{ID: 2, ProductID: 3, PriceModifier: dec("-50.00")},
	}, nil)

	err := f.uc.AdminUpdateProduct(context.Background(), 1, 3, AdminProductInput{Name: "Lamp", Price: dec("10.00")})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminCreateProduct_NegativeStock(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.AdminCreateProduct(context.Background(), 1, AdminProductInput{Name: "Cafe", Price: dec("3.20"), Stock: -1})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}
