package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type PaymentMethodDTO struct {
	ID          int64  `json:"id"`
	PaymentType string `json:"payment_type"`
	Provider    string `json:"provider"`
	// 下4桁以外は伏せる
	AccountNumber string `json:"account_number"`
	ExpiryDate    string `json:"expiry_date"`
	IsDefault     bool   `json:"is_default"`
	CreatedAt     string `json:"created_at"`
}

type PaymentMethodRequest struct {
	PaymentType   string `json:"payment_type"`
	Provider      string `json:"provider"`
	AccountNumber string `json:"account_number"`
	ExpiryDate    string `json:"expiry_date"`
	IsDefault     bool   `json:"is_default"`
}

// 空白とハイフンを除いた英数字4〜34文字
func normalizeAccountNumber(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r == ' ' || r == '-':
			continue
		case (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	n := b.String()
	return n, len(n) >= 4 && len(n) <= 34
}

// MM/YY。月末まで有効
func parseExpiry(s string) (year int, month time.Month, ok bool) {
	if len(s) != 5 || s[2] != '/' {
		return 0, 0, false
	}
	mm, err := strconv.Atoi(s[:2])
	if err != nil || mm < 1 || mm > 12 {
		return 0, 0, false
	}
	yy, err := strconv.Atoi(s[3:])
	if err != nil || yy < 0 {
		return 0, 0, false
	}
	return 2000 + yy, time.Month(mm), true
}

type PaymentMethodUsecase struct {
	methods repository.PaymentMethodRepository
	clock   Clock
}

func NewPaymentMethodUsecase(methods repository.PaymentMethodRepository, clock Clock) *PaymentMethodUsecase {
	return &PaymentMethodUsecase{methods: methods, clock: clock}
}

func (u *PaymentMethodUsecase) List(ctx context.Context, userID int64) ([]PaymentMethodDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	list, err := u.methods.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out := make([]PaymentMethodDTO, 0, len(list))
	for i := range list {
		out = append(out, toPaymentMethodDTO(&list[i]))
	}
	return out, nil
}

// 最初の1件は自動でデフォルト
func (u *PaymentMethodUsecase) Create(ctx context.Context, userID int64, req PaymentMethodRequest) (PaymentMethodDTO, error) {
	if userID <= 0 {
		return PaymentMethodDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := u.clock.Now()
	pm, err := u.validate(req, now)
	if err != nil {
		return PaymentMethodDTO{}, err
	}

	existing, err := u.methods.ListByUserID(ctx, userID)
	if err != nil {
		return PaymentMethodDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	pm.UserID = userID
	pm.IsDefault = req.IsDefault || len(existing) == 0
	pm.CreatedAt = now
	pm.UpdatedAt = now

	created, err := u.methods.Create(ctx, pm)
	if err != nil {
		return PaymentMethodDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toPaymentMethodDTO(&created), nil
}

func (u *PaymentMethodUsecase) validate(req PaymentMethodRequest, now time.Time) (model.PaymentMethod, error) {
	pm := model.PaymentMethod{
		PaymentType: strings.ToLower(strings.TrimSpace(req.PaymentType)),
		Provider:    strings.TrimSpace(req.Provider),
		ExpiryDate:  strings.TrimSpace(req.ExpiryDate),
	}

	switch pm.PaymentType {
	case model.PaymentTypeCard, model.PaymentTypeBank, model.PaymentTypeWallet:
	default:
		return pm, NewHTTPError(http.StatusBadRequest, "payment_type must be card, bank or wallet")
	}
	if pm.Provider == "" || len(pm.Provider) > 100 {
		return pm, NewHTTPError(http.StatusBadRequest, "invalid provider")
	}

	number, ok := normalizeAccountNumber(req.AccountNumber)
	if !ok {
		return pm, NewHTTPError(http.StatusBadRequest, "invalid account_number")
	}
	pm.AccountLast4 = number[len(number)-4:]

	if pm.PaymentType != model.PaymentTypeCard {
		if pm.ExpiryDate != "" {
			return pm, NewHTTPError(http.StatusBadRequest, "expiry_date is only for cards")
		}
		return pm, nil
	}

	year, month, ok := parseExpiry(pm.ExpiryDate)
	if !ok {
		return pm, NewHTTPError(http.StatusBadRequest, "expiry_date must be MM/YY")
	}
	if year < now.Year() || (year == now.Year() && month < now.Month()) {
		return pm, NewHTTPError(http.StatusBadRequest, "card expired")
	}
	return pm, nil
}

func (u *PaymentMethodUsecase) Delete(ctx context.Context, userID int64, id int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return paymentMethodWriteError(u.methods.Delete(ctx, userID, id))
}

func (u *PaymentMethodUsecase) SetDefault(ctx context.Context, userID int64, id int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return paymentMethodWriteError(u.methods.SetDefault(ctx, userID, id))
}

// 他人の支払い方法も404
func paymentMethodWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

func toPaymentMethodDTO(pm *model.PaymentMethod) PaymentMethodDTO {
	return PaymentMethodDTO{
		ID:            pm.ID,
		PaymentType:   pm.PaymentType,
		Provider:      pm.Provider,
		AccountNumber: "****" + pm.AccountLast4,
		ExpiryDate:    pm.ExpiryDate,
		IsDefault:     pm.IsDefault,
		CreatedAt:     pm.CreatedAt.Format(time.RFC3339),
	}
}
