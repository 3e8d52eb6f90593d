package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("/account", mw...)

	g.GET("/addresses", h.List)
	g.POST("/addresses", h.Create)
	g.PATCH("/addresses/:id", h.Update)
	g.DELETE("/addresses/:id", h.Delete)
	g.POST("/addresses/:id/default", h.SetDefault)
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "validation error")
	}

	created, err := h.uc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AddressHandler) Update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "validation error")
	}

	var req usecase.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "validation error")
	}

	updated, err := h.uc.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "validation error")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	// Success は {message:string} に寄せる
	return c.JSON(http.StatusOK, usecase.SuccessResponse{Message: "deleted"})
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "validation error")
	}

	if err := h.uc.SetDefault(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, usecase.SuccessResponse{Message: "default set"})
}
