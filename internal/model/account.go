// Package model はドメインモデルを定義する。
package model

import "time"

// Account はサービス利用アカウントを表す。
// ShoppingListsはこのアカウントが作成または招待された買い物リストIDの集合。
// 挿入順は意味を持たず、一意性のみが保証される。
type Account struct {
	ID             string
	Username       string
	Password       string
	FirstName      string
	LastName       string
	Email          string
	FacebookUserID string
	IsActive       bool
	CanLogin       bool
	CreationDate   time.Time
	LastLogin      *time.Time
	ShoppingLists  []string
}

// FullName は姓名を連結して返す。
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// HasList は指定IDのリストがメンバーシップ集合に含まれるかを返す。
func (a *Account) HasList(listID string) bool {
	for _, id := range a.ShoppingLists {
		if id == listID {
			return true
		}
	}
	return false
}

// ProfileChanged はFacebookプロフィールと保存済みの氏名・メールアドレスが
// 異なるかを返す。ログイン時のプロフィール再同期判定に使用する。
func (a *Account) ProfileChanged(firstName, lastName, email string) bool {
	return a.FirstName != firstName || a.LastName != lastName || a.Email != email
}
