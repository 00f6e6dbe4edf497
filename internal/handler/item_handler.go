package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/shopwithme/internal/list"
	"github.com/hitoshi/shopwithme/internal/model"
)

// ItemServiceInterface は項目ハンドラーが必要とするサービスインターフェース。
type ItemServiceInterface interface {
	// AddItem はリストに項目を追加する。
	AddItem(ctx context.Context, callerID, listID string, input list.ItemInput) (*model.ShoppingItem, error)
	// UpdateItem は指定項目を更新する。
	UpdateItem(ctx context.Context, callerID, listID, itemID string, input list.ItemInput) (*model.ShoppingItem, error)
	// DeleteItem は指定項目を取り除く。
	DeleteItem(ctx context.Context, callerID, listID, itemID string) error
	// CrossoutItem は指定項目をカート投入済みにする。
	CrossoutItem(ctx context.Context, callerID, listID, itemID string) (*model.ShoppingItem, error)
}

// ItemHandler は買い物リスト項目のHTTPハンドラー。
type ItemHandler struct {
	service ItemServiceInterface
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(service ItemServiceInterface) *ItemHandler {
	return &ItemHandler{service: service}
}

// itemRequest は項目の追加・更新リクエストのボディ。
type itemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Comment  string `json:"comment"`
}

// AddItem は項目追加を処理する。
// POST /api/profiles/{userId}/lists/{listId}/item
func (h *ItemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	item, err := h.service.AddItem(r.Context(), userID, listID, list.ItemInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Comment:  req.Comment,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toShoppingItemResponse(item))
}

// UpdateItem は項目更新を処理する。
// PUT /api/profiles/{userId}/lists/{listId}/item/{itemId}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")
	itemID := chi.URLParam(r, "itemId")

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), userID, listID, itemID, list.ItemInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Comment:  req.Comment,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toShoppingItemResponse(item))
}

// DeleteItem は項目削除を処理する。
// DELETE /api/profiles/{userId}/lists/{listId}/item/{itemId}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")
	itemID := chi.URLParam(r, "itemId")

	if err := h.service.DeleteItem(r.Context(), userID, listID, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CrossoutItem は項目のカート投入を処理する。
// PUT /api/profiles/{userId}/lists/{listId}/item/{itemId}/crossout
func (h *ItemHandler) CrossoutItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	listID := chi.URLParam(r, "listId")
	itemID := chi.URLParam(r, "itemId")

	item, err := h.service.CrossoutItem(r.Context(), userID, listID, itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toShoppingItemResponse(item))
}
