package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type AddressDTO struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	AddressType string `json:"address_type"`
	IsDefault   bool   `json:"is_default"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// 作成・更新で共通
type AddressRequest struct {
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	AddressType string `json:"address_type"`
}

func (r AddressRequest) normalize() (AddressRequest, error) {
	r.Line1 = strings.TrimSpace(r.Line1)
	r.Line2 = strings.TrimSpace(r.Line2)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	r.Country = strings.TrimSpace(r.Country)
	r.AddressType = strings.ToLower(strings.TrimSpace(r.AddressType))

	//入力チェック
	if r.Line1 == "" || r.City == "" || r.PostalCode == "" || r.Country == "" {
		return r, NewHTTPError(http.StatusBadRequest, "line1, city, postal_code and country are required")
	}
	if len(r.PostalCode) > 20 {
		return r, NewHTTPError(http.StatusBadRequest, "postal_code too long")
	}
	switch r.AddressType {
	case "":
		r.AddressType = "shipping"
	case "shipping", "billing":
	default:
		return r, NewHTTPError(http.StatusBadRequest, "invalid address_type")
	}
	return r, nil
}

type AddressUsecase struct {
	addresses repository.AddressRepository
	clock     Clock
}

func NewAddressUsecase(addresses repository.AddressRepository, clock Clock) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, clock: clock}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

// 最初の住所は自動でデフォルトにする
func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	req, err := req.normalize()
	if err != nil {
		return AddressDTO{}, err
	}

	existing, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return AddressDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := u.clock.Now()

	created, err := u.addresses.Create(ctx, model.Address{
		UserID:      userID,
		Line1:       req.Line1,
		Line2:       req.Line2,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		AddressType: req.AddressType,
		IsDefault:   len(existing) == 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return AddressDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return AddressDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	req, err := req.normalize()
	if err != nil {
		return AddressDTO{}, err
	}

	a, err := u.findOwned(ctx, userID, addressID)
	if err != nil {
		return AddressDTO{}, err
	}

	a.Line1 = req.Line1
	a.Line2 = req.Line2
	a.City = req.City
	a.State = req.State
	a.PostalCode = req.PostalCode
	a.Country = req.Country
	a.AddressType = req.AddressType
	a.UpdatedAt = u.clock.Now()

	if err := u.addresses.Update(ctx, userID, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AddressDTO{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return AddressDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toAddressDTO(&a), nil
}

// 注文側のshipping_address_idはNULLになる
func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.findOwned(ctx, userID, addressID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.findOwned(ctx, userID, addressID); err != nil {
		return err
	}

	//user内でdefaultは1つ
	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 存在しなければ404、他人のものなら403
func (u *AddressUsecase) findOwned(ctx context.Context, userID int64, addressID int64) (model.Address, error) {
	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Address{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if a.UserID != userID {
		return model.Address{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return a, nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:          a.ID,
		UserID:      a.UserID,
		Line1:       a.Line1,
		Line2:       a.Line2,
		City:        a.City,
		State:       a.State,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		AddressType: a.AddressType,
		IsDefault:   a.IsDefault,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}
