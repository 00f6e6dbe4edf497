// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/shopwithme/internal/model"
)

// APIAccessTokenHeader はAPIアクセストークンを運ぶHTTPヘッダー名。
const APIAccessTokenHeader = "X-Api-Access-Token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenAuthoriser はトークンとユーザーIDの組の認可判定インターフェース。
// トークンが存在しない・期限切れ・ユーザー不一致の場合はfalseを返し、
// ストレージ障害のみエラーを返す。
type TokenAuthoriser interface {
	Authorise(ctx context.Context, apiAccessToken, userID string) (bool, error)
}

// NewAuthoriseMiddleware はX-Api-Access-TokenヘッダーのトークンをURLの
// {userId}パラメータと突き合わせて検証するミドルウェアを返す。
// ヘッダーまたはパラメータが欠けている場合は400、認可に失敗した場合は401、
// トークンストアの障害時は500を返す。
// 検証済みユーザーIDをリクエストコンテキストに注入する。
func NewAuthoriseMiddleware(authoriser TokenAuthoriser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiAccessToken := r.Header.Get(APIAccessTokenHeader)
			userID := chi.URLParam(r, "userId")

			if apiAccessToken == "" || userID == "" {
				WriteErrorResponse(w, http.StatusBadRequest,
					model.NewValidationError("apiAccessTokenとuserIdは必須です"))
				return
			}

			ok, err := authoriser.Authorise(r.Context(), apiAccessToken, userID)
			if err != nil {
				slog.Error("token authorisation failed",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストから検証済みユーザーIDを取得する。
// 認可ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
