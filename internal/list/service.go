// Package list は買い物リストとテンプレートのドメインロジックを提供する。
package list

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/shopwithme/internal/model"
	"github.com/hitoshi/shopwithme/internal/repository"
	"github.com/hitoshi/shopwithme/internal/security"
)

// CreateInput はリスト作成の入力。
type CreateInput struct {
	Title      string
	IsShared   bool
	IsTemplate bool
	Invitees   []string
}

// Service は買い物リストのサービス層。
// アクセス制御の判定はsecurityパッケージの純粋関数に委譲する。
type Service struct {
	listRepo    repository.ShoppingListRepository
	accountRepo repository.AccountRepository
	sanitizer   security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	listRepo repository.ShoppingListRepository,
	accountRepo repository.AccountRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		listRepo:    listRepo,
		accountRepo: accountRepo,
		sanitizer:   sanitizer,
	}
}

// Create はリストを新規作成し、作成者のメンバーシップ集合にIDを追加する。
// 作成者アカウントが存在しない場合はACCOUNT_NOT_FOUNDを返し、リストは作成しない。
// リスト保存後のメンバーシップ更新に失敗した場合は部分更新状態としてSTORAGE_ERRORを返す。
func (s *Service) Create(ctx context.Context, creatorID string, input CreateInput) (*model.ShoppingList, error) {
	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewValidationError("titleは必須です")
	}

	creator, err := s.accountRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
	}
	if creator == nil {
		return nil, model.NewAccountNotFoundError()
	}

	list := &model.ShoppingList{
		ID:            uuid.New().String(),
		CreatedBy:     creatorID,
		CreationDate:  time.Now(),
		IsActive:      true,
		Title:         title,
		IsShared:      input.IsShared,
		IsTemplate:    input.IsTemplate,
		Invitees:      input.Invitees,
		ShoppingItems: []model.ShoppingItem{},
	}

	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("リストの作成に失敗しました: %w", err)
	}

	if err := s.accountRepo.AddShoppingList(ctx, creatorID, list.ID); err != nil {
		// リストは保存済みだがメンバーシップが未更新の部分更新状態。握りつぶさずに返す。
		slog.Error("membership update failed after list creation",
			slog.String("user_id", creatorID),
			slog.String("list_id", list.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageError("リスト作成後のメンバーシップ更新")
	}

	slog.Info("shopping list created",
		slog.String("list_id", list.ID),
		slog.String("user_id", creatorID),
		slog.Bool("is_template", list.IsTemplate),
	)

	return list, nil
}

// CreateFromTemplate はテンプレートを複製して新しいリストを作成する。
// タイトル・共有フラグ・招待者・項目列を初期状態として引き継ぐ。
// isTemplateフラグは引き継がれない（複製は常に通常のリストになる）。
// テンプレートの所有者以外による複製は拒否し、リストを作成しない。
func (s *Service) CreateFromTemplate(ctx context.Context, creatorID, templateID string) (*model.ShoppingList, error) {
	template, err := s.listRepo.FindActiveByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("テンプレートの取得に失敗しました: %w", err)
	}
	if template == nil || !template.IsTemplate {
		return nil, model.NewTemplateNotFoundError(templateID)
	}

	if template.CreatedBy != creatorID {
		slog.Warn("template copy denied",
			slog.String("template_id", templateID),
			slog.String("user_id", creatorID),
		)
		return nil, model.NewUnauthorizedError()
	}

	items := make([]model.ShoppingItem, len(template.ShoppingItems))
	copy(items, template.ShoppingItems)
	invitees := make([]string, len(template.Invitees))
	copy(invitees, template.Invitees)

	list := &model.ShoppingList{
		ID:            uuid.New().String(),
		CreatedBy:     creatorID,
		CreationDate:  time.Now(),
		IsActive:      true,
		Title:         template.Title,
		IsShared:      template.IsShared,
		Invitees:      invitees,
		ShoppingItems: items,
	}

	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("リストの作成に失敗しました: %w", err)
	}

	if err := s.accountRepo.AddShoppingList(ctx, creatorID, list.ID); err != nil {
		return nil, model.NewStorageError("リスト作成後のメンバーシップ更新")
	}

	slog.Info("shopping list created from template",
		slog.String("list_id", list.ID),
		slog.String("template_id", templateID),
		slog.String("user_id", creatorID),
	)

	return list, nil
}

// Get は指定リストを取得する。
// 呼び出し元がメンバーでない場合、またはリストが論理削除済みの場合は取得を拒否する。
func (s *Service) Get(ctx context.Context, callerID, listID string) (*model.ShoppingList, error) {
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

	if !security.CanFetchShoppingList(caller, list) {
		return nil, model.NewUnauthorizedError()
	}
	return list, nil
}

// GetTemplates は指定ユーザーが作成した有効なテンプレートの一覧を返す。
func (s *Service) GetTemplates(ctx context.Context, userID string) ([]*model.ShoppingList, error) {
	templates, err := s.listRepo.FindTemplatesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("テンプレートの検索に失敗しました: %w", err)
	}
	return templates, nil
}

// GetActiveListsForUser は指定ユーザーのメンバーシップ集合に含まれる
// 有効な（テンプレートでない）リストの一覧を返す。
func (s *Service) GetActiveListsForUser(ctx context.Context, userID string) ([]*model.ShoppingList, error) {
	account, err := s.accountRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError()
	}
	if len(account.ShoppingLists) == 0 {
		return []*model.ShoppingList{}, nil
	}

	lists, err := s.listRepo.FindActiveListsByIDs(ctx, account.ShoppingLists)
	if err != nil {
		return nil, fmt.Errorf("リストの検索に失敗しました: %w", err)
	}
	return lists, nil
}

// updatableListFields は更新可能フィールドのホワイトリスト。
var updatableListFields = map[string]bool{
	"title":      true,
	"isShared":   true,
	"isTemplate": true,
	"invitees":   true,
}

// Update はホワイトリスト内のフィールドのみを更新する。
// 未知のフィールドが含まれる場合はUNKNOWN_FIELDで拒否し、何も更新しない。
// 更新の成否に関わらずlastUpdateを刻印するのはリポジトリの責務。
func (s *Service) Update(ctx context.Context, callerID, listID string, fields map[string]json.RawMessage) (*model.ShoppingList, error) {
	for key := range fields {
		if !updatableListFields[key] {
			return nil, model.NewUnknownFieldError(key)
		}
	}

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

	update, err := s.parseListUpdate(fields)
	if err != nil {
		return nil, err
	}

	updated, err := s.listRepo.Update(ctx, listID, update, time.Now())
	if err != nil {
		return nil, fmt.Errorf("リストの更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewListNotFoundError(listID)
	}
	return updated, nil
}

// parseListUpdate はホワイトリスト済みフィールドをListUpdateに変換する。
func (s *Service) parseListUpdate(fields map[string]json.RawMessage) (repository.ListUpdate, error) {
	var update repository.ListUpdate

	if raw, ok := fields["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return update, model.NewValidationError("titleは文字列である必要があります")
		}
		title = s.sanitizer.Sanitize(title)
		if title == "" {
			return update, model.NewValidationError("titleは必須です")
		}
		update.Title = &title
	}
	if raw, ok := fields["isShared"]; ok {
		var isShared bool
		if err := json.Unmarshal(raw, &isShared); err != nil {
			return update, model.NewValidationError("isSharedは真偽値である必要があります")
		}
		update.IsShared = &isShared
	}
	if raw, ok := fields["isTemplate"]; ok {
		var isTemplate bool
		if err := json.Unmarshal(raw, &isTemplate); err != nil {
			return update, model.NewValidationError("isTemplateは真偽値である必要があります")
		}
		update.IsTemplate = &isTemplate
	}
	if raw, ok := fields["invitees"]; ok {
		var invitees []string
		if err := json.Unmarshal(raw, &invitees); err != nil {
			return update, model.NewValidationError("inviteesは文字列配列である必要があります")
		}
		update.Invitees = invitees
	}

	return update, nil
}

// SoftDelete はリストを論理削除し、呼び出し元のメンバーシップ集合からIDを取り除く。
// 論理削除後のメンバーシップ更新に失敗した場合は部分更新状態としてエラーを返す。
func (s *Service) SoftDelete(ctx context.Context, callerID, listID string) (*model.ShoppingList, error) {
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

	deleted, err := s.listRepo.Deactivate(ctx, listID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("リストの論理削除に失敗しました: %w", err)
	}
	if deleted == nil {
		return nil, model.NewListNotFoundError(listID)
	}

	removed, err := s.accountRepo.RemoveShoppingList(ctx, callerID, listID)
	if err != nil {
		slog.Error("membership removal failed after soft delete",
			slog.String("user_id", callerID),
			slog.String("list_id", listID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageError("論理削除後のメンバーシップ更新")
	}
	if !removed {
		return nil, model.NewListNotFoundError(listID)
	}

	slog.Info("shopping list deleted",
		slog.String("list_id", listID),
		slog.String("user_id", callerID),
	)

	return deleted, nil
}

// fetchAccountAndList はアカウントとリストを並行に取得する。
// どちらかの取得がストレージエラーになった場合はエラーを返す。
// 見つからない場合はそれぞれnilのまま返し、判定は呼び出し元が行う。
func (s *Service) fetchAccountAndList(ctx context.Context, accountID, listID string) (*model.Account, *model.ShoppingList, error) {
	var (
		wg         sync.WaitGroup
		account    *model.Account
		accountErr error
		list       *model.ShoppingList
		listErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		account, accountErr = s.accountRepo.FindByID(ctx, accountID)
	}()
	go func() {
		defer wg.Done()
		list, listErr = s.listRepo.FindActiveByID(ctx, listID)
	}()
	wg.Wait()

	if accountErr != nil {
		return nil, nil, fmt.Errorf("アカウントの取得に失敗しました: %w", accountErr)
	}
	if listErr != nil {
		return nil, nil, fmt.Errorf("リストの取得に失敗しました: %w", listErr)
	}
	return account, list, nil
}
