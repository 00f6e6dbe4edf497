// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/shopwithme/internal/account"
	"github.com/hitoshi/shopwithme/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Create はアカウントを新規作成する。
	Create(ctx context.Context, input account.CreateInput) (*model.Account, error)
	// GetByUsername はusernameでアカウントを取得する。
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	// Update は氏名とメールアドレスを更新する。
	Update(ctx context.Context, id string, input account.UpdateInput) (*model.Account, error)
	// Disable はアカウントを論理的に無効化する。
	Disable(ctx context.Context, id string) (*model.Account, error)
}

// AccountHandler はアカウント管理のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// createAccountRequest はアカウント作成リクエストのボディ。
type createAccountRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// updateAccountRequest はプロフィール更新リクエストのボディ。
type updateAccountRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// accountResponse はアカウント情報のAPIレスポンス。
type accountResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Email         string     `json:"email"`
	IsActive      bool       `json:"isActive"`
	CreationDate  time.Time  `json:"creationDate"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	ShoppingLists []string   `json:"shoppingLists"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateAccount はアカウント作成を処理する。
// POST /api/profiles
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	created, err := h.service.Create(r.Context(), account.CreateInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAccountResponse(created))
}

// GetAccount はusernameでアカウントを取得する。
// GET /api/profiles/{userId}
// パスパラメータの値はusernameとして解釈する。
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "userId")

	found, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAccountResponse(found))
}

// UpdateAccount はプロフィールを更新する。
// PUT /api/profiles/{userId}
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	if _, err := uuid.Parse(id); err != nil {
		// UUIDでないIDはDBのキャストエラーになる前に404として扱う
		handleServiceError(w, model.NewAccountNotFoundError())
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	updated, err := h.service.Update(r.Context(), id, account.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAccountResponse(updated))
}

// DeleteAccount はアカウントを論理的に無効化する。
// DELETE /api/profiles/{userId}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	if _, err := uuid.Parse(id); err != nil {
		handleServiceError(w, model.NewAccountNotFoundError())
		return
	}

	if _, err := h.service.Disable(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toAccountResponse はmodel.AccountからAPIレスポンスに変換する。
// パスワードとFacebookユーザーIDはレスポンスに含めない。
func toAccountResponse(a *model.Account) accountResponse {
	lists := a.ShoppingLists
	if lists == nil {
		lists = []string{}
	}
	return accountResponse{
		ID:            a.ID,
		Username:      a.Username,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		IsActive:      a.IsActive,
		CreationDate:  a.CreationDate,
		LastLogin:     a.LastLogin,
		ShoppingLists: lists,
	}
}

// writeInvalidBodyResponse はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidBodyResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeUnknownField:
		return http.StatusBadRequest
	case model.ErrCodeAccountNotFound, model.ErrCodeListNotFound,
		model.ErrCodeTemplateNotFound, model.ErrCodeItemNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateItem:
		return http.StatusConflict
	case model.ErrCodeUnauthorized, model.ErrCodeBadCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
