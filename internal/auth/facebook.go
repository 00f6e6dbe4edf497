// Package auth はFacebookトークン検証によるモバイルログインとログアウトを提供する。
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hitoshi/shopwithme/internal/model"
)

const defaultFacebookGraphURL = "https://graph.facebook.com"

// FacebookProfile はFacebook Graph APIから取得したユーザープロフィール。
type FacebookProfile struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// IdentityProvider は外部IDプロバイダーのトークン検証インターフェース。
type IdentityProvider interface {
	// VerifyAccessToken はアクセストークンを検証し、所有者のプロフィールを返す。
	VerifyAccessToken(ctx context.Context, accessToken string) (*FacebookProfile, error)
}

// FacebookProviderConfig はFacebookプロバイダーの設定。
type FacebookProviderConfig struct {
	// テスト用にオーバーライド可能なGraph APIベースURL
	GraphURL string
}

// FacebookProvider はFacebook Graph APIによるトークン検証を提供する。
type FacebookProvider struct {
	config FacebookProviderConfig
}

// NewFacebookProvider はFacebookProviderを生成する。
func NewFacebookProvider(config FacebookProviderConfig) *FacebookProvider {
	if config.GraphURL == "" {
		config.GraphURL = defaultFacebookGraphURL
	}
	return &FacebookProvider{config: config}
}

// facebookMeResponse はGraph APIの/meエンドポイントのレスポンス。
type facebookMeResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// facebookErrorResponse はGraph APIのエラーレスポンス。
type facebookErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// VerifyAccessToken はFacebookアクセストークンをGraph APIの/meで検証し、
// 所有者のプロフィールを返す。トークンが無効な場合はBAD_CREDENTIALSエラーを返す。
func (p *FacebookProvider) VerifyAccessToken(ctx context.Context, accessToken string) (*FacebookProfile, error) {
	params := url.Values{
		"access_token": {accessToken},
		"fields":       {"id,first_name,last_name,email"},
	}
	endpoint := p.config.GraphURL + "/me?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph api request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph api response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp facebookErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, model.NewBadCredentialsError(errResp.Error.Message)
		}
		return nil, fmt.Errorf("graph api returned status %d: %s", resp.StatusCode, string(body))
	}

	var me facebookMeResponse
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, fmt.Errorf("failed to parse graph api response: %w", err)
	}
	if me.ID == "" {
		return nil, fmt.Errorf("empty id in graph api response")
	}

	username := me.Username
	if username == "" {
		// Graph APIがusernameを返さない場合はFacebookユーザーIDで代用する
		username = me.ID
	}

	return &FacebookProfile{
		ID:        me.ID,
		Username:  username,
		FirstName: me.FirstName,
		LastName:  me.LastName,
		Email:     me.Email,
	}, nil
}

// compile-time interface check
var _ IdentityProvider = (*FacebookProvider)(nil)
