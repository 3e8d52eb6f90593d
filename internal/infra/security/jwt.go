package security

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// アクセストークンのclaims
type AccessClaims struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}
}

func (i *JWTIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 署名・期限を検証してclaimsを取り出す
func (i *JWTIssuer) Parse(tokenStr string) (AccessClaims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return AccessClaims{}, errors.New("invalid token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, errors.New("invalid claims")
	}

	//数値はfloat64で入ってくる
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return AccessClaims{}, errors.New("invalid sub")
	}
	tv, ok := claims["tv"].(float64)
	if !ok {
		return AccessClaims{}, errors.New("invalid tv")
	}
	role, _ := claims["role"].(string)

	return AccessClaims{
		UserID:       int64(sub),
		Role:         model.Role(role),
		TokenVersion: int(tv),
	}, nil
}
