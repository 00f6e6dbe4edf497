// Package model はドメインモデルを定義する。
package model

import "time"

// ShoppingList は買い物リストの集約を表す。
// ShoppingItemsはこの集約が排他的に所有する順序付きの列で、
// 項目は独立した永続化単位を持たない。項目の変更はすべて
// 集約のメソッドを経由し、列全体を1回の書き込みでコミットする。
type ShoppingList struct {
	ID            string
	CreatedBy     string
	CreationDate  time.Time
	LastUpdate    *time.Time
	IsActive      bool
	Title         string
	IsShared      bool
	IsTemplate    bool
	Invitees      []string
	ShoppingItems []ShoppingItem
}

// ShoppingItem は買い物リスト内の1項目を表す。
// Nameはリスト内で一意（大文字小文字を区別した完全一致）。
type ShoppingItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Quantity    string `json:"quantity"`
	Comment     string `json:"comment"`
	IsInTheCart bool   `json:"isInTheCart"`
}

// CanAddItem は指定の名前で項目を追加できるかを返す。
// 名前が空、または同名の項目がすでに存在する場合はfalse。
func (l *ShoppingList) CanAddItem(name string) bool {
	if name == "" {
		return false
	}
	for _, item := range l.ShoppingItems {
		if item.Name == name {
			return false
		}
	}
	return true
}

// FindItem は指定IDの項目を返す。見つからない場合はnil。
func (l *ShoppingList) FindItem(itemID string) *ShoppingItem {
	for i := range l.ShoppingItems {
		if l.ShoppingItems[i].ID == itemID {
			return &l.ShoppingItems[i]
		}
	}
	return nil
}

// AddItem は項目を列の末尾に追加する。
// 名前が空の場合はVALIDATION_ERROR、同名の項目が存在する場合はDUPLICATE_ITEMを返す。
func (l *ShoppingList) AddItem(item ShoppingItem) error {
	if item.Name == "" {
		return NewValidationError("項目名は必須です")
	}
	if !l.CanAddItem(item.Name) {
		return NewDuplicateItemError(item.Name)
	}
	l.ShoppingItems = append(l.ShoppingItems, item)
	return nil
}

// UpdateItem は指定IDの項目の名前・数量・コメントを更新する。
// 名前変更時は他の項目との重複を拒否する（自分自身との一致は許容）。
func (l *ShoppingList) UpdateItem(itemID, name, quantity, comment string) error {
	if name == "" {
		return NewValidationError("項目名は必須です")
	}
	target := l.FindItem(itemID)
	if target == nil {
		return NewItemNotFoundError(itemID)
	}
	for i := range l.ShoppingItems {
		if l.ShoppingItems[i].ID != itemID && l.ShoppingItems[i].Name == name {
			return NewDuplicateItemError(name)
		}
	}
	target.Name = name
	target.Quantity = quantity
	target.Comment = comment
	return nil
}

// RemoveItem は指定IDの項目を列から取り除く。
func (l *ShoppingList) RemoveItem(itemID string) error {
	for i := range l.ShoppingItems {
		if l.ShoppingItems[i].ID == itemID {
			l.ShoppingItems = append(l.ShoppingItems[:i], l.ShoppingItems[i+1:]...)
			return nil
		}
	}
	return NewItemNotFoundError(itemID)
}

// CrossoutItem は指定IDの項目をカート投入済みにする。冪等。
func (l *ShoppingList) CrossoutItem(itemID string) error {
	target := l.FindItem(itemID)
	if target == nil {
		return NewItemNotFoundError(itemID)
	}
	target.IsInTheCart = true
	return nil
}
