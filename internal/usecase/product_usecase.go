package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	clock       Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		clock:       clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Sort       string
}

type ProductView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	Image         string    `json:"image"`
	Description   string    `json:"description"`
	SKU           *string   `json:"sku"`
	StockQuantity int64     `json:"stock_quantity"`
	CategoryID    *int64    `json:"category_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type VariantView struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"product_id"`
	VariantType   string  `json:"variant_type"`
	VariantValue  string  `json:"variant_value"`
	PriceModifier string  `json:"price_modifier"`
	UnitPrice     string  `json:"unit_price"`
	SKU           *string `json:"sku"`
	StockQuantity int64   `json:"stock_quantity"`
}

type ProductListOutput struct {
	Items []ProductView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type ProductDetailOutput struct {
	ProductView
	Variants      []VariantView         `json:"variants"`
	Reviews       []model.ProductReview `json:"reviews"`
	AverageRating *float64              `json:"average_rating"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "name":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	views := make([]ProductView, 0, len(items))
	for _, p := range items {
		views = append(views, toProductView(p))
	}

	return ProductListOutput{
		Items: views,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductDetailOutput, error) {
	if productID <= 0 {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//バリエーションとレビューは並行して読む
	var (
		variants []model.ProductVariant
		reviews  []model.ProductReview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		variants, err = u.productRepo.ListVariants(gctx, productID)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = u.productRepo.ListReviews(gctx, productID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := ProductDetailOutput{
		ProductView: toProductView(p),
		Variants:    make([]VariantView, 0, len(variants)),
		Reviews:     reviews,
	}
	for _, v := range variants {
		out.Variants = append(out.Variants, toVariantView(p, v))
	}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		avg := float64(sum) / float64(len(reviews))
		out.AverageRating = &avg
	}
	return out, nil
}

type CreateReviewInput struct {
	Rating  int
	Comment string
}

func (u *ProductUsecase) CreateReview(ctx context.Context, userID int64, productID int64, in CreateReviewInput) (model.ProductReview, error) {
	if userID <= 0 {
		return model.ProductReview{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.ProductReview{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.ProductReview{}, NewHTTPError(http.StatusBadRequest, "rating must be 1..5")
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > 2000 {
		return model.ProductReview{}, NewHTTPError(http.StatusBadRequest, "comment too long")
	}

	uid := userID
	rv, err := u.productRepo.CreateReview(ctx, model.ProductReview{
		ProductID: productID,
		UserID:    &uid,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: u.clock.Now(),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.ProductReview{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.ProductReview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rv, nil
}

type AdminProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	SKU         *string
	Stock       int64
	CategoryID  *int64
}

func (in AdminProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Price.Exponent() < -2 {
		return NewHTTPError(http.StatusBadRequest, "price has too many decimals")
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (ProductView, error) {
	if adminUserID <= 0 {
		return ProductView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return ProductView{}, err
	}
	if in.Stock < 0 {
		return ProductView{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:          strings.TrimSpace(in.Name),
			Description:   in.Description,
			Price:         in.Price,
			Image:         in.Image,
			SKU:           normalizeSKU(in.SKU),
			StockQuantity: in.Stock,
			CategoryID:    in.CategoryID,
		})
		if err != nil {
			return productWriteError(err)
		}
		created = p
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct,
			strconv.FormatInt(p.ID, 10), nil, toProductView(p), u.clock.Now())
	})
	if err != nil {
		return ProductView{}, err
	}
	return toProductView(created), nil
}

// 在庫は AdminUpdateInventory でだけ変える
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//既存バリエーションの単価が負にならないこと
		variants, err := r.Products().ListVariants(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, v := range variants {
			if in.Price.Add(v.PriceModifier).IsNegative() {
				return NewHTTPError(http.StatusBadRequest, "price makes a variant price negative")
			}
		}

		after := before
		after.Name = strings.TrimSpace(in.Name)
		after.Description = in.Description
		after.Price = in.Price
		after.Image = in.Image
		after.SKU = normalizeSKU(in.SKU)
		after.CategoryID = in.CategoryID

		if err := r.Products().Update(ctx, after); err != nil {
			return productWriteError(err)
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct,
			strconv.FormatInt(productID, 10), toProductView(before), toProductView(after), u.clock.Now())
	})
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			return productWriteError(err)
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct,
			strconv.FormatInt(productID, 10), toProductView(before), nil, u.clock.Now())
	})
}

type AdminVariantInput struct {
	VariantType   string
	VariantValue  string
	PriceModifier decimal.Decimal
	SKU           *string
	Stock         int64
}

func (u *ProductUsecase) AdminCreateVariant(ctx context.Context, adminUserID int64, productID int64, in AdminVariantInput) (VariantView, error) {
	if adminUserID <= 0 {
		return VariantView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return VariantView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.VariantType) == "" || strings.TrimSpace(in.VariantValue) == "" {
		return VariantView{}, NewHTTPError(http.StatusBadRequest, "variant_type and variant_value required")
	}
	if in.Stock < 0 {
		return VariantView{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return VariantView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return VariantView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//差分を足しても負にならないこと
	if p.Price.Add(in.PriceModifier).IsNegative() {
		return VariantView{}, NewHTTPError(http.StatusBadRequest, "price_modifier makes price negative")
	}

	v, err := u.productRepo.CreateVariant(ctx, model.ProductVariant{
		ProductID:     productID,
		VariantType:   strings.TrimSpace(in.VariantType),
		VariantValue:  strings.TrimSpace(in.VariantValue),
		PriceModifier: in.PriceModifier,
		SKU:           normalizeSKU(in.SKU),
		StockQuantity: in.Stock,
	})
	if err != nil {
		return VariantView{}, productWriteError(err)
	}
	return toVariantView(p, v), nil
}

func (u *ProductUsecase) AdminDeleteVariant(ctx context.Context, adminUserID int64, variantID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if variantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid variant id")
	}
	err := u.productRepo.DeleteVariant(ctx, variantID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 在庫を「現在値」に更新し、調整履歴と監査ログも残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - p.StockQuantity,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateStock, model.AuditResourceProduct,
			strconv.FormatInt(productID, 10),
			map[string]int64{"stock": p.StockQuantity},
			map[string]int64{"stock": newStock},
			now)
	})
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func writeAudit(ctx context.Context, r repo.TxRepos, actor int64, action model.AuditAction, resType model.AuditResourceType, resID string, before any, after any, at time.Time) error {
	log := model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: resType,
		ResourceID:   resID,
		CreatedAt:    at,
	}
	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		log.BeforeJSON = string(b)
	}
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		log.AfterJSON = string(b)
	}
	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func productWriteError(err error) error {
	switch {
	case errors.Is(err, repo.ErrConflict):
		return NewHTTPError(http.StatusConflict, "sku already exists")
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	default:
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
}

// 空文字のSKUはNULLとして扱う
func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	s := strings.TrimSpace(*sku)
	if s == "" {
		return nil
	}
	return &s
}

func toProductView(p model.Product) ProductView {
	return ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Price:         money(p.Price),
		Image:         p.Image,
		Description:   p.Description,
		SKU:           p.SKU,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		CreatedAt:     p.CreatedAt,
	}
}

func toVariantView(p model.Product, v model.ProductVariant) VariantView {
	return VariantView{
		ID:            v.ID,
		ProductID:     v.ProductID,
		VariantType:   v.VariantType,
		VariantValue:  v.VariantValue,
		PriceModifier: money(v.PriceModifier),
		UnitPrice:     money(p.Price.Add(v.PriceModifier)),
		SKU:           v.SKU,
		StockQuantity: v.StockQuantity,
	}
}
