package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/shopwithme/internal/list"
	"github.com/hitoshi/shopwithme/internal/model"
)

// ListServiceInterface はリストハンドラーが必要とするサービスインターフェース。
type ListServiceInterface interface {
	// Create はリストを新規作成する。
	Create(ctx context.Context, creatorID string, input list.CreateInput) (*model.ShoppingList, error)
	// CreateFromTemplate はテンプレートを複製して新しいリストを作成する。
	CreateFromTemplate(ctx context.Context, creatorID, templateID string) (*model.ShoppingList, error)
	// Get は指定リストを取得する。
	Get(ctx context.Context, callerID, listID string) (*model.ShoppingList, error)
	// GetTemplates は指定ユーザーのテンプレート一覧を返す。
	GetTemplates(ctx context.Context, userID string) ([]*model.ShoppingList, error)
	// GetActiveListsForUser は指定ユーザーの有効なリスト一覧を返す。
	GetActiveListsForUser(ctx context.Context, userID string) ([]*model.ShoppingList, error)
	// Update はホワイトリスト内のフィールドのみを更新する。
	Update(ctx context.Context, callerID, listID string, fields map[string]json.RawMessage) (*model.ShoppingList, error)
	// SoftDelete はリストを論理削除する。
	SoftDelete(ctx context.Context, callerID, listID string) (*model.ShoppingList, error)
}

// ListHandler は買い物リスト管理のHTTPハンドラー。
type ListHandler struct {
	service ListServiceInterface
}

// NewListHandler はListHandlerを生成する。
func NewListHandler(service ListServiceInterface) *ListHandler {
	return &ListHandler{service: service}
}

// createListRequest はリスト作成リクエストのボディ。
type createListRequest struct {
	Title      string   `json:"title"`
	IsShared   bool     `json:"isShared"`
	IsTemplate bool     `json:"isTemplate"`
	Invitees   []string `json:"invitees"`
}

// shoppingItemResponse は項目のAPIレスポンス。
type shoppingItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Quantity    string `json:"quantity"`
	Comment     string `json:"comment"`
	IsInTheCart bool   `json:"isInTheCart"`
}

// shoppingListResponse はリストのAPIレスポンス。
type shoppingListResponse struct {
	ID            string                 `json:"id"`
	CreatedBy     string                 `json:"createdBy"`
	CreationDate  time.Time              `json:"creationDate"`
	LastUpdate    *time.Time             `json:"lastUpdate,omitempty"`
	IsActive      bool                   `json:"isActive"`
	Title         string                 `json:"title"`
	IsShared      bool                   `json:"isShared"`
	IsTemplate    bool                   `json:"isTemplate"`
	Invitees      []string               `json:"invitees"`
	ShoppingItems []shoppingItemResponse `json:"shoppingItems"`
}

// CreateList はリスト作成を処理する。
// POST /api/profiles/{userId}/lists
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	created, err := h.service.Create(r.Context(), userID, list.CreateInput{
		Title:      req.Title,
		IsShared:   req.IsShared,
		IsTemplate: req.IsTemplate,
		Invitees:   req.Invitees,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toShoppingListResponse(created))
}

// CreateListFromTemplate はテンプレートからのリスト作成を処理する。
// POST /api/profiles/{userId}/lists/{listId}
// パスのリストID位置に複製元テンプレートのIDを指定する。
func (h *ListHandler) CreateListFromTemplate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	templateID := chi.URLParam(r, "listId")

	created, err := h.service.CreateFromTemplate(r.Context(), userID, templateID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toShoppingListResponse(created))
}

// GetLists はユーザーのリスト一覧、またはクエリ指定時はテンプレート一覧を返す。
// GET /api/profiles/{userId}/lists
// GET /api/profiles/{userId}/lists?isTemplate=true
func (h *ListHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var (
		lists []*model.ShoppingList
		err   error
	)
	if r.URL.Query().Get("isTemplate") == "true" {
		lists, err = h.service.GetTemplates(r.Context(), userID)
	} else {
		lists, err = h.service.GetActiveListsForUser(r.Context(), userID)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]shoppingListResponse, len(lists))
	for i, l := range lists {
		results[i] = toShoppingListResponse(l)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetList は指定リストを取得する。
// GET /api/profiles/{userId}/lists/{listId}
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")

	found, err := h.service.Get(r.Context(), userID, listID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toShoppingListResponse(found))
}

// UpdateList はリストの部分更新を処理する。
// PUT /api/profiles/{userId}/lists/{listId}
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, listID, fields)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toShoppingListResponse(updated))
}

// DeleteList はリストの論理削除を処理する。
// DELETE /api/profiles/{userId}/lists/{listId}
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")

	if _, err := h.service.SoftDelete(r.Context(), userID, listID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toShoppingListResponse はmodel.ShoppingListからAPIレスポンスに変換する。
func toShoppingListResponse(l *model.ShoppingList) shoppingListResponse {
	invitees := l.Invitees
	if invitees == nil {
		invitees = []string{}
	}
	items := make([]shoppingItemResponse, len(l.ShoppingItems))
	for i, item := range l.ShoppingItems {
		items[i] = toShoppingItemResponse(&item)
	}
	return shoppingListResponse{
		ID:            l.ID,
		CreatedBy:     l.CreatedBy,
		CreationDate:  l.CreationDate,
		LastUpdate:    l.LastUpdate,
		IsActive:      l.IsActive,
		Title:         l.Title,
		IsShared:      l.IsShared,
		IsTemplate:    l.IsTemplate,
		Invitees:      invitees,
		ShoppingItems: items,
	}
}

// toShoppingItemResponse はmodel.ShoppingItemからAPIレスポンスに変換する。
func toShoppingItemResponse(item *model.ShoppingItem) shoppingItemResponse {
	return shoppingItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Comment:     item.Comment,
		IsInTheCart: item.IsInTheCart,
	}
}
