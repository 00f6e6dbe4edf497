// Package token はAPIアクセストークンの発行とセキュリティトークンの管理を提供する。
package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/hitoshi/shopwithme/internal/model"
)

const (
	// tokenLength は発行するAPIアクセストークンの文字数。
	tokenLength = 32
	// tokenAlphabet はトークンに使用する文字集合。
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// tokenLifetime はトークンの有効期間。
	tokenLifetime = 24 * time.Hour
)

// Issuer はAPIアクセストークンを発行する。
type Issuer struct{}

// NewIssuer はIssuerを生成する。
func NewIssuer() *Issuer {
	return &Issuer{}
}

// Issue は指定ユーザー向けの新しいAPIアクセストークンを発行する。
// トークンは英数字32文字、有効期間は発行時刻から24時間。
func (i *Issuer) Issue(userID, application string) (*model.ApiAccessToken, error) {
	value, err := generateTokenString()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api access token: %w", err)
	}

	now := time.Now()
	return &model.ApiAccessToken{
		AccessToken:    value,
		IssueDate:      now,
		ExpirationDate: now.Add(tokenLifetime),
		Application:    application,
		UserID:         userID,
	}, nil
}

// generateTokenString は暗号的に安全な乱数で英数字トークン文字列を生成する。
func generateTokenString() (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, tokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}
