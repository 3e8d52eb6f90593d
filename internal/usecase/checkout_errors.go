package usecase

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrOrderPersistence  = errors.New("order could not be placed")
)

// errors.Is(err, ErrInsufficientFunds)でも判定できる
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Total   decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: balance %s, total %s", e.Balance.StringFixed(2), e.Total.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// 足りない金額
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Total.Sub(e.Balance)
}

// 保存に失敗した元のエラーを包む。注文は何も残らない
type OrderPersistenceError struct {
	Err error
}

func (e *OrderPersistenceError) Error() string {
	return fmt.Sprintf("order could not be placed: %v", e.Err)
}

func (e *OrderPersistenceError) Unwrap() error {
	return e.Err
}

func (e *OrderPersistenceError) Is(target error) bool {
	return target == ErrOrderPersistence
}
