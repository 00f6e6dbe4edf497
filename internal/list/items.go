package list

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/shopwithme/internal/model"
	"github.com/hitoshi/shopwithme/internal/security"
)

// ItemInput は項目の追加・更新の入力。
type ItemInput struct {
	Name     string
	Quantity string
	Comment  string
}

// AddItem はリストに項目を追加し、項目列全体を1回の書き込みでコミットする。
// 項目名はリスト内で一意（大文字小文字を区別）。
func (s *Service) AddItem(ctx context.Context, callerID, listID string, input ItemInput) (*model.ShoppingItem, error) {
	list, err := s.loadListForItemChange(ctx, callerID, listID)
	if err != nil {
		return nil, err
	}

	item := model.ShoppingItem{
		ID:       uuid.New().String(),
		Name:     s.sanitizer.Sanitize(input.Name),
		Quantity: s.sanitizer.Sanitize(input.Quantity),
		Comment:  s.sanitizer.Sanitize(input.Comment),
	}

	if err := list.AddItem(item); err != nil {
		return nil, err
	}

	if err := s.listRepo.SaveItems(ctx, listID, list.ShoppingItems, time.Now()); err != nil {
		return nil, fmt.Errorf("項目の保存に失敗しました: %w", err)
	}

	slog.Info("item added",
		slog.String("list_id", listID),
		slog.String("item_id", item.ID),
	)

	return list.FindItem(item.ID), nil
}

// UpdateItem は指定項目の名前・数量・コメントを更新する。
func (s *Service) UpdateItem(ctx context.Context, callerID, listID, itemID string, input ItemInput) (*model.ShoppingItem, error) {
	list, err := s.loadListForItemChange(ctx, callerID, listID)
	if err != nil {
		return nil, err
	}

	name := s.sanitizer.Sanitize(input.Name)
	quantity := s.sanitizer.Sanitize(input.Quantity)
	comment := s.sanitizer.Sanitize(input.Comment)

	if err := list.UpdateItem(itemID, name, quantity, comment); err != nil {
		return nil, err
	}

	if err := s.listRepo.SaveItems(ctx, listID, list.ShoppingItems, time.Now()); err != nil {
		return nil, fmt.Errorf("項目の保存に失敗しました: %w", err)
	}

	return list.FindItem(itemID), nil
}

// DeleteItem は指定項目をリストから取り除く。
func (s *Service) DeleteItem(ctx context.Context, callerID, listID, itemID string) error {
	list, err := s.loadListForItemChange(ctx, callerID, listID)
	if err != nil {
		return err
	}

	if err := list.RemoveItem(itemID); err != nil {
		return err
	}

	if err := s.listRepo.SaveItems(ctx, listID, list.ShoppingItems, time.Now()); err != nil {
		return fmt.Errorf("項目の保存に失敗しました: %w", err)
	}

	slog.Info("item removed",
		slog.String("list_id", listID),
		slog.String("item_id", itemID),
	)

	return nil
}

// CrossoutItem は指定項目をカート投入済みにする。すでに投入済みの場合も成功する。
func (s *Service) CrossoutItem(ctx context.Context, callerID, listID, itemID string) (*model.ShoppingItem, error) {
	list, err := s.loadListForItemChange(ctx, callerID, listID)
	if err != nil {
		return nil, err
	}

	if err := list.CrossoutItem(itemID); err != nil {
		return nil, err
	}

	if err := s.listRepo.SaveItems(ctx, listID, list.ShoppingItems, time.Now()); err != nil {
		return nil, fmt.Errorf("項目の保存に失敗しました: %w", err)
	}

	return list.FindItem(itemID), nil
}

// loadListForItemChange は項目変更の前提条件を検証し、対象リストを返す。
// 項目の変更はリスト本体の変更と同じ判定を通す（作成者のみ）。
func (s *Service) loadListForItemChange(ctx context.Context, callerID, listID string) (*model.ShoppingList, error) {
	caller, list, err := s.fetchAccountAndList(ctx, callerID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, model.NewListNotFoundError(listID)
	}
	if caller == nil {
		return nil, model.NewAccountNotFoundError()
	}
	if !security.CanUpdateOrDeleteShoppingList(caller, list) {
		return nil, model.NewUnauthorizedError()
	}
	return list, nil
}
