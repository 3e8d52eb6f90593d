package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/checkout", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteCheckoutError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "empty cart",
			err:        usecase.ErrEmptyCart,
			wantStatus: http.StatusBadRequest,
			wantError:  "cart is empty",
		},
		{
			name:       "persistence",
			err:        &usecase.OrderPersistenceError{Err: errors.New("connection reset")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "order could not be placed",
		},
		{
			name:       "http error",
			err:        usecase.NewHTTPError(http.StatusNotFound, "address not found"),
			wantStatus: http.StatusNotFound,
			wantError:  "address not found",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "")

			require.NoError(t, writeCheckoutError(c, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestWriteCheckoutError_InsufficientFunds(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "")

	err := &usecase.InsufficientFundsError{
		Balance: decimal.RequireFromString("50"),
		Total:   decimal.RequireFromString("70"),
	}
	require.NoError(t, writeCheckoutError(c, err))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	var body InsufficientFundsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, InsufficientFundsResponse{
		Error:     "insufficient balance",
		Total:     "70.00",
		Balance:   "50.00",
		Shortfall: "20.00",
	}, body)
}

func TestPlaceOrder_RequiresUser(t *testing.T) {
	h := NewCheckoutHandler(nil)
	c, rec := newTestContext(http.MethodPost, "")

	require.NoError(t, h.placeOrder(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrder_InvalidBody(t *testing.T) {
	h := NewCheckoutHandler(nil)
	c, rec := newTestContext(http.MethodPost, `{"shipping_address_id":"x"`)
	c.Set(middleware.CtxUserIDKey, int64(1))

	require.NoError(t, h.placeOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
