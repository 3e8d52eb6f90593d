package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

type WishlistAddRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *WishlistHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("/wishlist", mw...)
	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("/:product_id", h.remove)
}

func (h *WishlistHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	items, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// 既に入っていても200
func (h *WishlistHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req WishlistAddRequest
	if err := c.Bind(&req); err != nil || req.ProductID <= 0 {
		return badRequest(c, "invalid product_id")
	}

	if err := h.uc.Add(c.Request().Context(), userID, req.ProductID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, usecase.SuccessResponse{Message: "added"})
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := pathID(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product_id")
	}

	if err := h.uc.Remove(c.Request().Context(), userID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, usecase.SuccessResponse{Message: "removed"})
}
