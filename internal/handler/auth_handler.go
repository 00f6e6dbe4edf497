package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/shopwithme/internal/auth"
)

// defaultApplication はアプリケーション名が指定されない場合の既定値。
const defaultApplication = "mobile_app"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はFacebookアクセストークンを検証してログインし、APIアクセストークンを発行する。
	Login(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error)
	// Logout は指定ユーザーのセキュリティトークンを破棄する。
	Logout(ctx context.Context, userID, apiAccessToken string) error
}

// AuthHandler はモバイル認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// facebookLoginRequest はモバイルログインリクエストのボディ。
type facebookLoginRequest struct {
	FacebookAccessToken string `json:"facebookAccessToken"`
	Application         string `json:"application"`
}

// logoutRequest はログアウトリクエストのボディ。
type logoutRequest struct {
	UserID         string `json:"userId"`
	APIAccessToken string `json:"apiAccessToken"`
}

// FacebookMobileLogin はFacebookトークンによるモバイルログインを処理する。
// POST /api/auth/facebook/mobile
func (h *AuthHandler) FacebookMobileLogin(w http.ResponseWriter, r *http.Request) {
	var req facebookLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	application := req.Application
	if application == "" {
		application = defaultApplication
	}

	result, err := h.service.Login(r.Context(), req.FacebookAccessToken, application)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Logout はセキュリティトークンを破棄する。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	if err := h.service.Logout(r.Context(), req.UserID, req.APIAccessToken); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
