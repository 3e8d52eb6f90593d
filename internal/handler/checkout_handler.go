package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type PlaceOrderRequest struct {
	ShippingAddressID *int64 `json:"shipping_address_id"`
	Notes             string `json:"notes"`
}

type PlaceOrderResponse struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
}

type InsufficientFundsResponse struct {
	Error     string `json:"error"`
	Total     string `json:"total"`
	Balance   string `json:"balance"`
	Shortfall string `json:"shortfall"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("/checkout", mw...)
	g.GET("", h.preview)
	g.POST("", h.placeOrder)
}

func (h *CheckoutHandler) preview(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Preview(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) placeOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	//ボディは省略可
	var req PlaceOrderRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		ShippingAddressID: req.ShippingAddressID,
		Notes:             req.Notes,
	})
	if err != nil {
		return writeCheckoutError(c, err)
	}

	return c.JSON(http.StatusOK, PlaceOrderResponse{
		OrderID: out.OrderID,
		Total:   out.Total.StringFixed(2),
	})
}

// 失敗の種類ごとにステータスを分ける
func writeCheckoutError(c echo.Context, err error) error {
	var insufficient *usecase.InsufficientFundsError
	switch {
	case errors.Is(err, usecase.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart is empty"})
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusPaymentRequired, InsufficientFundsResponse{
			Error:     "insufficient balance",
			Total:     insufficient.Total.StringFixed(2),
			Balance:   insufficient.Balance.StringFixed(2),
			Shortfall: insufficient.Shortfall().StringFixed(2),
		})
	case errors.Is(err, usecase.ErrOrderPersistence):
		slog.ErrorContext(c.Request().Context(), "place order failed", "err", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "order could not be placed"})
	}
	return writeError(c, err)
}
