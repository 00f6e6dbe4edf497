package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/shopwithme/internal/model"
)

// PostgresShoppingListRepo はPostgreSQLを使用した買い物リストリポジトリ。
// inviteesとshopping_itemsは集約の所有データとしてJSONB列に保持する。
type PostgresShoppingListRepo struct {
	db *sql.DB
}

// NewPostgresShoppingListRepo はPostgresShoppingListRepoを生成する。
func NewPostgresShoppingListRepo(db *sql.DB) *PostgresShoppingListRepo {
	return &PostgresShoppingListRepo{db: db}
}

const listColumns = `id, created_by, creation_date, last_update, is_active,
	title, is_shared, is_template, invitees, shopping_items`

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanShoppingList は1行をmodel.ShoppingListに読み込む。
func scanShoppingList(row rowScanner) (*model.ShoppingList, error) {
	l := &model.ShoppingList{}
	var invitees, items []byte
	err := row.Scan(
		&l.ID, &l.CreatedBy, &l.CreationDate, &l.LastUpdate, &l.IsActive,
		&l.Title, &l.IsShared, &l.IsTemplate, &invitees, &items,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shopping list: %w", err)
	}
	if err := json.Unmarshal(invitees, &l.Invitees); err != nil {
		return nil, fmt.Errorf("failed to decode invitees: %w", err)
	}
	if err := json.Unmarshal(items, &l.ShoppingItems); err != nil {
		return nil, fmt.Errorf("failed to decode shopping items: %w", err)
	}
	return l, nil
}

// FindByID は論理削除の有無に関わらず指定IDのリストを取得する。
func (r *PostgresShoppingListRepo) FindByID(ctx context.Context, id string) (*model.ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM shopping_lists WHERE id = $1`, id)
	return scanShoppingList(row)
}

// FindActiveByID はisActive=trueのリストのみを取得する。
func (r *PostgresShoppingListRepo) FindActiveByID(ctx context.Context, id string) (*model.ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM shopping_lists WHERE id = $1 AND is_active`, id)
	return scanShoppingList(row)
}

// Create はリストを作成する。
func (r *PostgresShoppingListRepo) Create(ctx context.Context, list *model.ShoppingList) error {
	invitees, err := json.Marshal(emptyIfNil(list.Invitees))
	if err != nil {
		return fmt.Errorf("failed to encode invitees: %w", err)
	}
	items, err := json.Marshal(emptyItemsIfNil(list.ShoppingItems))
	if err != nil {
		return fmt.Errorf("failed to encode shopping items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, created_by, creation_date, last_update,
			is_active, title, is_shared, is_template, invitees, shopping_items)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb)`,
		list.ID, list.CreatedBy, list.CreationDate, list.LastUpdate,
		list.IsActive, list.Title, list.IsShared, list.IsTemplate, string(invitees), string(items),
	)
	if err != nil {
		return fmt.Errorf("failed to create shopping list: %w", err)
	}
	return nil
}

// Update は指定フィールドのみを更新し、lastUpdateを刻印する。
// fieldsのnilフィールドは現在値を保持する。
func (r *PostgresShoppingListRepo) Update(ctx context.Context, id string, fields ListUpdate, now time.Time) (*model.ShoppingList, error) {
	var invitees *string
	if fields.Invitees != nil {
		encoded, err := json.Marshal(fields.Invitees)
		if err != nil {
			return nil, fmt.Errorf("failed to encode invitees: %w", err)
		}
		s := string(encoded)
		invitees = &s
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET title = COALESCE($2::text, title),
		     is_shared = COALESCE($3::boolean, is_shared),
		     is_template = COALESCE($4::boolean, is_template),
		     invitees = COALESCE($5::jsonb, invitees),
		     last_update = $6
		 WHERE id = $1
		 RETURNING `+listColumns,
		id, fields.Title, fields.IsShared, fields.IsTemplate, invitees, now,
	)
	return scanShoppingList(row)
}

// Deactivate はリストを論理削除する。
func (r *PostgresShoppingListRepo) Deactivate(ctx context.Context, id string, now time.Time) (*model.ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET is_active = FALSE, last_update = $2
		 WHERE id = $1
		 RETURNING `+listColumns,
		id, now,
	)
	return scanShoppingList(row)
}

// SaveItems は項目列全体を1回のUPDATEで差し替える。
func (r *PostgresShoppingListRepo) SaveItems(ctx context.Context, listID string, items []model.ShoppingItem, now time.Time) error {
	encoded, err := json.Marshal(emptyItemsIfNil(items))
	if err != nil {
		return fmt.Errorf("failed to encode shopping items: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE shopping_lists SET shopping_items = $2::jsonb, last_update = $3 WHERE id = $1`,
		listID, string(encoded), now,
	)
	if err != nil {
		return fmt.Errorf("failed to save shopping items: %w", err)
	}
	return nil
}

// FindTemplatesForUser はユーザーが所有する有効なテンプレート一覧を返す。
func (r *PostgresShoppingListRepo) FindTemplatesForUser(ctx context.Context, userID string) ([]*model.ShoppingList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listColumns+`
		 FROM shopping_lists
		 WHERE created_by = $1 AND is_template AND is_active
		 ORDER BY creation_date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find templates: %w", err)
	}
	defer rows.Close()
	return collectLists(rows)
}

// FindActiveListsByIDs は指定ID集合のうち有効な非テンプレートのリストを返す。
func (r *PostgresShoppingListRepo) FindActiveListsByIDs(ctx context.Context, listIDs []string) ([]*model.ShoppingList, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listColumns+`
		 FROM shopping_lists
		 WHERE id = ANY($1) AND is_active AND NOT is_template
		 ORDER BY creation_date`,
		pq.Array(listIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find lists by ids: %w", err)
	}
	defer rows.Close()
	return collectLists(rows)
}

// collectLists は結果セットをスライスに読み込む。
func collectLists(rows *sql.Rows) ([]*model.ShoppingList, error) {
	var lists []*model.ShoppingList
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping lists: %w", err)
	}
	return lists, nil
}

// emptyIfNil はnilスライスをJSONの[]として保存するための正規化。
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyItemsIfNil(s []model.ShoppingItem) []model.ShoppingItem {
	if s == nil {
		return []model.ShoppingItem{}
	}
	return s
}

// compile-time interface check
var _ ShoppingListRepository = (*PostgresShoppingListRepo)(nil)
