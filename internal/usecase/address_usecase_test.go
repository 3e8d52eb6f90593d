package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validAddress() AddressRequest {
	return AddressRequest{Line1: "1 Main St", City: "Hanoi", PostalCode: "100000", Country: "VN"}
}

func TestCreateAddress_FirstBecomesDefault(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses, fixedClock{t: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})

	addresses.On("ListByUserID", mock.Anything, int64(7)).Return([]model.Address{}, nil)
	addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.IsDefault && a.AddressType == "shipping" && a.UserID == 7
	})).Return(model.Address{ID: 1, UserID: 7, IsDefault: true, AddressType: "shipping"}, nil)

	out, err := uc.Create(context.Background(), 7, validAddress())
	require.NoError(t, err)
	assert.True(t, out.IsDefault)
}

func TestCreateAddress_SecondIsNotDefault(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses, fixedClock{})

	addresses.On("ListByUserID", mock.Anything, int64(7)).Return([]model.Address{{ID: 1, IsDefault: true}}, nil)
	addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return !a.IsDefault
	})).Return(model.Address{ID: 2}, nil)

	_, err := uc.Create(context.Background(), 7, validAddress())
	require.NoError(t, err)
	addresses.AssertExpectations(t)
}

func TestCreateAddress_Validation(t *testing.T) {
	uc := NewAddressUsecase(new(AddressRepoMock), fixedClock{})

	req := validAddress()
	req.City = " "
	_, err := uc.Create(context.Background(), 7, req)
	assertHTTPStatus(t, err, http.StatusBadRequest)

	req = validAddress()
	req.AddressType = "office"
	_, err = uc.Create(context.Background(), 7, req)
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestUpdateAddress_Ownership(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses, fixedClock{})

	addresses.On("FindByID", mock.Anything, int64(1)).Return(model.Address{ID: 1, UserID: 8}, nil)
	addresses.On("FindByID", mock.Anything, int64(2)).Return(nil, repo.ErrNotFound)

	_, err := uc.Update(context.Background(), 7, 1, validAddress())
	assertHTTPStatus(t, err, http.StatusForbidden)

	_, err = uc.Update(context.Background(), 7, 2, validAddress())
	assertHTTPStatus(t, err, http.StatusNotFound)

	addresses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetDefaultAddress(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses, fixedClock{})

	addresses.On("FindByID", mock.Anything, int64(3)).Return(model.Address{ID: 3, UserID: 7}, nil)
	addresses.On("SetDefault", mock.Anything, int64(7), int64(3)).Return(nil)

	require.NoError(t, uc.SetDefault(context.Background(), 7, 3))
	addresses.AssertExpectations(t)
}
