package security

import (
	"crypto/rand"
	"encoding/base64"
)

type RandomSecretGenerator struct{}

func NewRandomSecretGenerator() *RandomSecretGenerator {
	return &RandomSecretGenerator{}
}

// 32バイトの乱数をURLで使える文字列にする
func (g *RandomSecretGenerator) NewSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
