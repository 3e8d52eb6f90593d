package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidatePassword(ctx context.Context, password string) error
}

type UserDTO struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	Verified     bool       `json:"verified"`
	Balance      string     `json:"balance"`
	TokenVersion int        `json:"token_version"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type AuthRegisterResponse struct {
	User    UserDTO `json:"user"`
	Message string  `json:"message"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthSettings struct {
	InitialBalance decimal.Decimal
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	PublicBaseURL  string
}

type AuthUsecase struct {
	settings  AuthSettings
	users     repository.UserRepository
	tokens    repository.TokenStore
	hasher    PasswordHasher
	issuer    AccessTokenIssuer
	secrets   SecretGenerator
	notifier  LinkNotifier
	clock     Clock
	validator AuthValidator
}

func NewAuthUsecase(
	settings AuthSettings,
	users repository.UserRepository,
	tokens repository.TokenStore,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	secrets SecretGenerator,
	notifier LinkNotifier,
	clock Clock,
	validator AuthValidator,
) *AuthUsecase {
	settings.PublicBaseURL = strings.TrimRight(settings.PublicBaseURL, "/")
	return &AuthUsecase{
		settings:  settings,
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		issuer:    issuer,
		secrets:   secrets,
		notifier:  notifier,
		clock:     clock,
		validator: validator,
	}
}

// 登録直後は未確認。確認リンクを通知する
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	email := normalizeEmail(req.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, email, req.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Verified:     false,
		Balance:      u.settings.InitialBalance,
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewHTTPError(http.StatusConflict, "email already exists")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	token, err := u.issueToken(ctx, model.TokenPurposeVerify, user.ID, u.settings.VerifyTokenTTL)
	if err != nil {
		return nil, err
	}

	link := u.settings.PublicBaseURL + "/auth/verify?email=" + url.QueryEscape(email) + "&token=" + url.QueryEscape(token)
	if err := u.notifier.NotifyVerification(ctx, email, link); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "could not send verification link")
	}

	return &AuthRegisterResponse{
		User:    toUserDTO(user),
		Message: "registration successful, check the verification link",
	}, nil
}

// メール確認
func (u *AuthUsecase) Verify(ctx context.Context, email string, token string) (*SuccessResponse, error) {
	email = normalizeEmail(email)
	token = strings.TrimSpace(token)
	if email == "" || token == "" {
		return nil, NewHTTPError(http.StatusNotFound, "invalid verification link")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "invalid verification link")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ownerID, err := u.tokens.Consume(ctx, model.TokenPurposeVerify, token)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && ownerID != user.ID) {
		return nil, NewHTTPError(http.StatusNotFound, "invalid verification link")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "token store error")
	}

	if err := u.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &SuccessResponse{Message: "email verified successfully"}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	email := normalizeEmail(req.Email)

	// 入力検証
	if err := u.validator.ValidateLogin(ctx, email, req.Password); err != nil {
		return nil, err
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//パスワード照合（bcrypt）
	if !u.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "user is inactive")
	}
	if !user.Verified {
		return nil, NewHTTPError(http.StatusForbidden, "user not verified, check the verification link")
	}

	//last_login更新
	now := u.clock.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	_ = u.users.Update(ctx, user)

	accessToken, expiresAt, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// token_versionを上げて発行済みトークンを全部無効にする
func (u *AuthUsecase) Logout(ctx context.Context, userID int64) (*SuccessResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &SuccessResponse{Message: "logout success"}, nil
}

// 管理者が対象ユーザーのトークンを失効させる
func (u *AuthUsecase) ForceLogout(ctx context.Context, userID int64) (*SuccessResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &SuccessResponse{Message: "forced logout"}, nil
}

// 登録されていないemailは404
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) (*SuccessResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "email required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "email not found")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	token, err := u.issueToken(ctx, model.TokenPurposeReset, user.ID, u.settings.ResetTokenTTL)
	if err != nil {
		return nil, err
	}

	link := u.settings.PublicBaseURL + "/auth/password-reset/" + url.PathEscape(token)
	if err := u.notifier.NotifyPasswordReset(ctx, email, link); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "could not send reset link")
	}
	return &SuccessResponse{Message: "reset link sent"}, nil
}

// 再設定するとメールも確認済みになる
func (u *AuthUsecase) ResetPassword(ctx context.Context, token string, newPassword string) (*SuccessResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid token")
	}
	if err := u.validator.ValidatePassword(ctx, newPassword); err != nil {
		return nil, err
	}

	userID, err := u.tokens.Consume(ctx, model.TokenPurposeReset, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid token")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "token store error")
	}

	pwHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.users.UpdatePassword(ctx, userID, pwHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid token")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &SuccessResponse{Message: "password reset successful"}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	dto := toUserDTO(user)
	return &dto, nil
}

func (u *AuthUsecase) issueToken(ctx context.Context, purpose model.TokenPurpose, userID int64, ttl time.Duration) (string, error) {
	token, err := u.secrets.NewSecret()
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := u.tokens.Issue(ctx, purpose, userID, token, ttl); err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "token store error")
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Role:         string(u.Role),
		Verified:     u.Verified,
		Balance:      money(u.Balance),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
}
