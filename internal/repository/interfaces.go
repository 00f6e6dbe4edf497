// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/shopwithme/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
// メンバーシップ集合（Account.ShoppingLists）の操作もここに属する。
type AccountRepository interface {
	// FindByID は指定IDのアカウントをメンバーシップ集合付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByUsername はusernameでアカウントを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.Account, error)

	// Create はアカウントを作成する。username重複は制約違反エラーになる。
	Create(ctx context.Context, account *model.Account) error

	// UpdateProfile は氏名とメールアドレスを更新し、更新後のアカウントを返す。
	// 見つからない場合はnilを返す。
	UpdateProfile(ctx context.Context, id, firstName, lastName, email string) (*model.Account, error)

	// Disable はisActive=false, canLogin=falseに設定し、更新後のアカウントを返す。
	// 見つからない場合はnilを返す。
	Disable(ctx context.Context, id string) (*model.Account, error)

	// UpdateLastLogin は最終ログイン日時を更新する。
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error

	// AddShoppingList はメンバーシップ集合にリストIDを追加する。
	// すでに含まれている場合は何もしない（集合セマンティクス）。
	AddShoppingList(ctx context.Context, accountID, listID string) error

	// RemoveShoppingList はメンバーシップ集合からリストIDを取り除く。
	// 取り除いた場合はtrue、含まれていなかった場合はfalseを返す。
	RemoveShoppingList(ctx context.Context, accountID, listID string) (bool, error)
}

// ShoppingListRepository は買い物リスト集約の永続化インターフェース。
type ShoppingListRepository interface {
	// FindByID は論理削除の有無に関わらず指定IDのリストを取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ShoppingList, error)

	// FindActiveByID はisActive=trueのリストのみを取得する。
	// 存在しない場合も論理削除済みの場合もnilを返す。
	FindActiveByID(ctx context.Context, id string) (*model.ShoppingList, error)

	// Create はリストを作成する。
	Create(ctx context.Context, list *model.ShoppingList) error

	// Update は指定フィールドのみを更新し、lastUpdateを刻印した更新後のリストを返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id string, fields ListUpdate, now time.Time) (*model.ShoppingList, error)

	// Deactivate はisActive=falseに設定しlastUpdateを刻印する（論理削除）。
	// 更新後のリストを返し、見つからない場合はnilを返す。
	Deactivate(ctx context.Context, id string, now time.Time) (*model.ShoppingList, error)

	// SaveItems は集約の項目列全体を1回の書き込みで差し替え、lastUpdateを刻印する。
	SaveItems(ctx context.Context, listID string, items []model.ShoppingItem, now time.Time) error

	// FindTemplatesForUser はcreatedBy=userId AND isTemplate AND isActiveのリストを返す。
	FindTemplatesForUser(ctx context.Context, userID string) ([]*model.ShoppingList, error)

	// FindActiveListsByIDs は指定ID集合のうちisActive AND NOT isTemplateのリストを返す。
	FindActiveListsByIDs(ctx context.Context, listIDs []string) ([]*model.ShoppingList, error)
}

// ListUpdate は買い物リストの更新可能フィールドを表す。
// nilのフィールドは更新対象外。
type ListUpdate struct {
	Title      *string
	IsShared   *bool
	IsTemplate *bool
	Invitees   []string
}

// TokenRepository はセキュリティトークンの永続化インターフェース。
type TokenRepository interface {
	// Save はセキュリティトークンを保存する。トークン文字列の重複は制約違反エラーになる。
	Save(ctx context.Context, token *model.SecurityToken) error

	// FindByToken はAPIアクセストークン文字列でセキュリティトークンを検索する。
	// 見つからない場合はnilを返す。
	FindByToken(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error)

	// Remove は指定トークンを削除する。存在しないトークンの削除はエラーにならない。
	Remove(ctx context.Context, apiAccessToken string) error

	// RemoveAllForUser は指定ユーザーの全トークンを削除する。
	RemoveAllForUser(ctx context.Context, userID string) error
}
