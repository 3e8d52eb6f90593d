package handler

import (
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カテゴリ・画像・監査ログの管理API
type AdminCatalogHandler struct {
	categories *usecase.CategoryUsecase
	images     *usecase.ImageUsecase
	auditLogs  *usecase.AuditLogUsecase
}

func NewAdminCatalogHandler(categories *usecase.CategoryUsecase, images *usecase.ImageUsecase, auditLogs *usecase.AuditLogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{categories: categories, images: images, auditLogs: auditLogs}
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *AdminCatalogHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/categories", h.listCategories)
	g.POST("/categories", h.createCategory)
	g.DELETE("/categories/:id", h.deleteCategory)

	g.GET("/images", h.listImages)
	g.POST("/images", h.uploadImage)

	g.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminCatalogHandler) listCategories(c echo.Context) error {
	list, err := h.categories.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminCatalogHandler) createCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CategoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	cat, err := h.categories.AdminCreate(c.Request().Context(), adminID, usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *AdminCatalogHandler) deleteCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.categories.AdminDelete(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, usecase.SuccessResponse{Message: "deleted"})
}

func (h *AdminCatalogHandler) listImages(c echo.Context) error {
	list, err := h.images.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// multipartの "image" フィールド
func (h *AdminCatalogHandler) uploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file required")
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "could not read image")
	}
	defer f.Close()

	img, err := h.images.Upload(c.Request().Context(), usecase.UploadImageInput{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, img)
}

func (h *AdminCatalogHandler) listAuditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}

	f := repository.AuditLogFilter{Limit: limit, Offset: offset}
	if v := strings.TrimSpace(c.QueryParam("action")); v != "" {
		action := model.AuditAction(strings.ToUpper(v))
		f.Action = &action
	}
	if v := strings.TrimSpace(c.QueryParam("resource_type")); v != "" {
		rt := model.AuditResourceType(strings.ToLower(v))
		f.ResourceType = &rt
	}
	if v := strings.TrimSpace(c.QueryParam("resource_id")); v != "" {
		f.ResourceID = &v
	}

	logs, err := h.auditLogs.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
