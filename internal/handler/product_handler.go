package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products, /categories の公開API
type ProductHandler struct {
	uc         *usecase.ProductUsecase
	categories *usecase.CategoryUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, categories *usecase.CategoryUsecase) *ProductHandler {
	return &ProductHandler{uc: uc, categories: categories}
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// 公開商品のルートを登録。レビュー投稿だけmwを通す
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/categories", h.listCategories)
	e.POST("/products/:id/reviews", h.createReview, mw...)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}

	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	categoryID, ok := queryInt64Ptr(c, "category_id")
	if !ok {
		return badRequest(c, "invalid category_id")
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
		Sort:       c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) listCategories(c echo.Context) error {
	list, err := h.categories.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) createReview(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	review, err := h.uc.CreateReview(c.Request().Context(), userID, productID, usecase.CreateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}
