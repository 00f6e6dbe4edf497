// Package security はアクセス制御ポリシーと入力サニタイズを提供する。
//
// ポリシー関数はメモリ上のAccount/ShoppingList値のみを見る純粋関数で、
// I/Oを行わない。リストとその項目に対するすべての読み取り・変更ハンドラーは
// 操作前に必ずここの判定を通す。
package security

import "github.com/hitoshi/shopwithme/internal/model"

// CanFetchShoppingList はアカウントがリストを取得できるかを返す。
// 条件: リストIDがメンバーシップ集合に含まれ、かつリストが有効であること。
func CanFetchShoppingList(account *model.Account, list *model.ShoppingList) bool {
	if account == nil || list == nil {
		return false
	}
	return account.HasList(list.ID) && list.IsActive
}

// CanUpdateOrDeleteShoppingList はアカウントがリストを変更・削除できるかを返す。
// 取得条件に加えて、アカウントがリストの作成者であることを要求する。
func CanUpdateOrDeleteShoppingList(account *model.Account, list *model.ShoppingList) bool {
	if account == nil || list == nil {
		return false
	}
	return account.ID == list.CreatedBy && account.HasList(list.ID) && list.IsActive
}
