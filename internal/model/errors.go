// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, account, list, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnknownField     = "UNKNOWN_FIELD"
	ErrCodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	ErrCodeListNotFound     = "LIST_NOT_FOUND"
	ErrCodeTemplateNotFound = "TEMPLATE_NOT_FOUND"
	ErrCodeItemNotFound     = "ITEM_NOT_FOUND"
	ErrCodeDuplicateItem    = "DUPLICATE_ITEM"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeBadCredentials   = "BAD_CREDENTIALS"
	ErrCodeStorage          = "STORAGE_ERROR"
)

// NewValidationError は入力不正エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("リクエスト内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUnknownFieldError は更新不可のフィールドが指定された場合のエラーを生成する。
func NewUnknownFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownField,
		Message:  fmt.Sprintf("更新できないフィールドです: %s", field),
		Category: "validation",
		Action:   "isTemplate、title、isShared、inviteesのみ更新できます。",
	}
}

// NewAccountNotFoundError はアカウントが見つからない場合のエラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "アカウントが見つかりません。",
		Category: "account",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewListNotFoundError は買い物リストが見つからない場合のエラーを生成する。
// 論理削除済み（isActive=false）のリストもこのエラーで扱う。
func NewListNotFoundError(listID string) *APIError {
	return &APIError{
		Code:     ErrCodeListNotFound,
		Message:  fmt.Sprintf("指定された買い物リストが見つかりません: %s", listID),
		Category: "list",
		Action:   "リストIDを確認してください。",
	}
}

// NewTemplateNotFoundError はテンプレートが見つからない場合のエラーを生成する。
func NewTemplateNotFoundError(templateID string) *APIError {
	return &APIError{
		Code:     ErrCodeTemplateNotFound,
		Message:  fmt.Sprintf("指定されたテンプレートが見つかりません: %s", templateID),
		Category: "list",
		Action:   "テンプレートIDを確認してください。",
	}
}

// NewItemNotFoundError はリスト内の項目が見つからない場合のエラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定された項目が見つかりません: %s", itemID),
		Category: "list",
		Action:   "項目IDを確認してください。",
	}
}

// NewDuplicateItemError は同名の項目がすでに存在する場合のエラーを生成する。
func NewDuplicateItemError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateItem,
		Message:  fmt.Sprintf("同じ名前の項目がすでに存在します: %s", name),
		Category: "list",
		Action:   "別の名前を指定するか、既存の項目を更新してください。",
	}
}

// NewUnauthorizedError はアクセスポリシーが操作を拒否した場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分が所有するリストに対してのみ操作できます。",
	}
}

// NewBadCredentialsError は外部プロバイダーがトークンを拒否した場合のエラーを生成する。
// プロバイダーが報告したメッセージを保持する。
func NewBadCredentialsError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeBadCredentials,
		Message:  message,
		Category: "auth",
		Action:   "Facebookで再ログインしてトークンを取得し直してください。",
	}
}

// NewStorageError は永続化層の失敗を表すエラーを生成する。
func NewStorageError(op string) *APIError {
	return &APIError{
		Code:     ErrCodeStorage,
		Message:  fmt.Sprintf("データの保存・取得に失敗しました: %s", op),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
