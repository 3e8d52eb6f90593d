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

type adminOrderFixture struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	audit      *AuditRepoMock
	uc         *AdminOrderUsecase
}

func newAdminOrderFixture() *adminOrderFixture {
	f := &adminOrderFixture{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		audit:      new(AuditRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &txReposStub{
		orders:     f.orders,
		orderItems: f.orderItems,
		auditLogs:  f.audit,
	}}
	f.uc = NewAdminOrderUsecase(f.tx, fixedClock{t: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	return f
}

func TestAdminOrderList(t *testing.T) {
	f := newAdminOrderFixture()
	filter := repo.AdminOrderListFilter{Page: 1, Limit: 50, Status: "pending"}

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("ListAdmin", mock.Anything, filter).Return([]model.Order{
		{ID: "o-1", UserID: 7, Status: model.OrderStatusPending, Total: dec("70")},
	}, int64(1), nil)
	f.orderItems.On("ListByOrderID", mock.Anything, "o-1").Return([]model.OrderItem{
		{OrderID: "o-1", ProductNameSnapshot: "Bac Xiu", Quantity: 2, UnitPrice: dec("20")},
	}, nil)

	out, err := f.uc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "70.00", out.Items[0].Total)
	require.Len(t, out.Items[0].Items, 1)
	assert.Equal(t, "40.00", out.Items[0].Items[0].LineTotal)
}

func TestAdminOrderList_InvalidStatus(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 50, Status: "lost"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminUpdateStatus_WritesAudit(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: model.OrderStatusPending, Total: dec("70")}, nil)
	f.orders.On("UpdateStatus", mock.Anything, "o-1", model.OrderStatusShipped).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == "o-1" &&
			l.BeforeJSON == `{"status":"pending"}` &&
			l.AfterJSON == `{"status":"shipped"}`
	})).Return(nil)

	out, err := f.uc.UpdateStatus(context.Background(), 1, "o-1", AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, "shipped", out.Status)
	f.audit.AssertExpectations(t)
}

func TestAdminUpdateStatus_TerminalStates(t *testing.T) {
	for _, st := range []model.OrderStatus{model.OrderStatusCanceled, model.OrderStatusDelivered} {
		t.Run(string(st), func(t *testing.T) {
			f := newAdminOrderFixture()

			f.tx.On("WithinTx", mock.Anything).Return(nil)
			f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: st}, nil)

			_, err := f.uc.UpdateStatus(context.Background(), 1, "o-1", AdminUpdateOrderStatusInput{Status: "pending"})
			assertHTTPStatus(t, err, http.StatusBadRequest)
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAdminUpdateStatus_NotFound(t *testing.T) {
	f := newAdminOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, "missing").Return(nil, repo.ErrNotFound)

	_, err := f.uc.UpdateStatus(context.Background(), 1, "missing", AdminUpdateOrderStatusInput{Status: "paid"})
	assertHTTPStatus(t, err, http.StatusNotFound)
}
