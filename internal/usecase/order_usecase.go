package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func NewOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders, orderItems: orderItems}
}

type OrderItemOutput struct {
	ProductID *int64 `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type OrderOutput struct {
	ID                string            `json:"id"`
	UserID            int64             `json:"user_id"`
	Status            string            `json:"status"`
	Total             string            `json:"total"`
	ShippingFee       string            `json:"shipping_fee"`
	Tax               string            `json:"tax"`
	Discount          string            `json:"discount"`
	ShippingAddressID *int64            `json:"shipping_address_id"`
	Notes             string            `json:"notes"`
	CreatedAt         time.Time         `json:"created_at"`
	Items             []OrderItemOutput `json:"items,omitempty"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, nil))
	}
	return OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	var outItems []OrderItemOutput
	if items != nil {
		outItems = make([]OrderItemOutput, 0, len(items))
	}
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: money(it.UnitPrice),
			Quantity:  it.Quantity,
			LineTotal: money(it.UnitPrice.Mul(decimalFromInt(it.Quantity))),
		})
	}

	return OrderOutput{
		ID:                o.ID,
		UserID:            o.UserID,
		Status:            string(o.Status),
		Total:             money(o.Total),
		ShippingFee:       money(o.ShippingFee),
		Tax:               money(o.Tax),
		Discount:          money(o.Discount),
		ShippingAddressID: o.ShippingAddressID,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt,
		Items:             outItems,
	}
}
