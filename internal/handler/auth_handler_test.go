package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/shopwithme/internal/auth"
	"github.com/hitoshi/shopwithme/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginFn  func(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error)
	logoutFn func(ctx context.Context, userID, apiAccessToken string) error
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func (m *mockAuthService) Login(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, facebookAccessToken, application)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, userID, apiAccessToken string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, userID, apiAccessToken)
	}
	return nil
}

// --- POST /api/auth/facebook/mobile テスト ---

func TestAuthHandler_FacebookMobileLogin_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error) {
			if facebookAccessToken != "fb-token-abc" {
				t.Errorf("facebookAccessToken = %q, want %q", facebookAccessToken, "fb-token-abc")
			}
			if application != "shopwithme_ios" {
				t.Errorf("application = %q, want %q", application, "shopwithme_ios")
			}
			return &auth.LoginResult{
				UserID:         "account-1",
				Username:       "valerio.gheri",
				FirstName:      "Valerio",
				LastName:       "Gheri",
				ApiAccessToken: "abcdefghijklmnopqrstuvwxyz012345",
			}, nil
		},
	}

	h := NewAuthHandler(svc)

	body := `{"facebookAccessToken": "fb-token-abc", "application": "shopwithme_ios"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/facebook/mobile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.FacebookMobileLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["userId"] != "account-1" {
		t.Errorf("userId = %v, want %q", result["userId"], "account-1")
	}
	token, ok := result["apiAccessToken"].(string)
	if !ok || len(token) != 32 {
		t.Errorf("apiAccessToken = %v, want 32 character string", result["apiAccessToken"])
	}
}

func TestAuthHandler_FacebookMobileLogin_DefaultApplication(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error) {
			if application != defaultApplication {
				t.Errorf("application = %q, want %q", application, defaultApplication)
			}
			return &auth.LoginResult{UserID: "account-1"}, nil
		},
	}

	h := NewAuthHandler(svc)

	// application未指定の場合は既定値で補完する
	body := `{"facebookAccessToken": "fb-token-abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/facebook/mobile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.FacebookMobileLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestAuthHandler_FacebookMobileLogin_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	body := `{invalid`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/facebook/mobile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.FacebookMobileLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_FacebookMobileLogin_BadCredentials_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error) {
			return nil, model.NewBadCredentialsError("Invalid OAuth access token.")
		},
	}

	h := NewAuthHandler(svc)

	body := `{"facebookAccessToken": "expired-token"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/facebook/mobile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.FacebookMobileLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	errResp := parseAPIErrorResponse(t, w)
	if errResp["code"] != model.ErrCodeBadCredentials {
		t.Errorf("code = %q, want %q", errResp["code"], model.ErrCodeBadCredentials)
	}
}

func TestAuthHandler_FacebookMobileLogin_LoginForbidden_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error) {
			return nil, model.NewUnauthorizedError()
		},
	}

	h := NewAuthHandler(svc)

	body := `{"facebookAccessToken": "fb-token-abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/facebook/mobile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.FacebookMobileLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthHandler_FacebookMobileLogin_InternalError_ReturnsInternalServerError(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, facebookAccessToken, application string) (*auth.LoginResult, error) {
			return nil, errors.New("graph api unreachable")
		},
	}

	h := NewAuthHandler(svc)

	body := `{"facebookAccessToken": "fb-token-abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/facebook/mobile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.FacebookMobileLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}

// --- POST /api/auth/logout テスト ---

func TestAuthHandler_Logout_Success(t *testing.T) {
	logoutCalled := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, userID, apiAccessToken string) error {
			logoutCalled = true
			if userID != "account-1" {
				t.Errorf("userID = %q, want %q", userID, "account-1")
			}
			if apiAccessToken != "abcdefghijklmnopqrstuvwxyz012345" {
				t.Errorf("apiAccessToken = %q, want token string", apiAccessToken)
			}
			return nil
		},
	}

	h := NewAuthHandler(svc)

	body := `{"userId": "account-1", "apiAccessToken": "abcdefghijklmnopqrstuvwxyz012345"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if !logoutCalled {
		t.Error("expected Logout to be called")
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("status = %q, want %q", result["status"], "ok")
	}
}

func TestAuthHandler_Logout_MissingParams_ReturnsBadRequest(t *testing.T) {
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, userID, apiAccessToken string) error {
			return model.NewValidationError("userIdとapiAccessTokenは必須です")
		},
	}

	h := NewAuthHandler(svc)

	body := `{"userId": "", "apiAccessToken": ""}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Logout_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	body := `{invalid`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
