package validator

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"storefront/internal/usecase"
)

const minPasswordLen = 8

// よくある弱いパスワード
var weakPasswords = map[string]struct{}{
	"password":     {},
	"password1":    {},
	"password123":  {},
	"123456789012": {},
	"1234567890":   {},
	"12345678":     {},
	"qwertyuiop":   {},
	"qwerty123":    {},
	"letmein1":     {},
	"admin123":     {},
	"iloveyou":     {},
}

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証。email重複はDBの一意制約で判定する
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}
	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email format")
	}
	return v.ValidatePassword(ctx, password)
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}
	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email format")
	}
	return nil
}

func (v *authValidator) ValidatePassword(ctx context.Context, password string) error {
	if len(password) < minPasswordLen {
		return usecase.NewHTTPError(http.StatusBadRequest, "password too short")
	}
	if len(password) > 72 {
		//bcryptは72バイトまで
		return usecase.NewHTTPError(http.StatusBadRequest, "password too long")
	}
	if _, weak := weakPasswords[strings.ToLower(strings.TrimSpace(password))]; weak {
		return usecase.NewHTTPError(http.StatusBadRequest, "weak password")
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	//"Name <a@b>" 形式は受け付けない
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
