package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CategoryUsecase struct {
	categories repo.CategoryRepository
	tx         repo.TransactionManager
	clock      Clock
}

func NewCategoryUsecase(categories repo.CategoryRepository, tx repo.TransactionManager, clock Clock) *CategoryUsecase {
	return &CategoryUsecase{categories: categories, tx: tx, clock: clock}
}

// 名前順
func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return []model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

type CategoryInput struct {
	Name        string
	Description string
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	var created model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Categories().Create(ctx, model.Category{Name: name, Description: strings.TrimSpace(in.Description)})
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "category already exists")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = c
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateCategory, model.AuditResourceCategory,
			strconv.FormatInt(c.ID, 10), nil, c, u.clock.Now())
	})
	if err != nil {
		return model.Category{}, err
	}
	return created, nil
}

// 属していた商品はカテゴリ無しになる
func (u *CategoryUsecase) AdminDelete(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Categories().FindByID(ctx, categoryID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Categories().Delete(ctx, categoryID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteCategory, model.AuditResourceCategory,
			strconv.FormatInt(categoryID, 10), before, nil, u.clock.Now())
	})
}
