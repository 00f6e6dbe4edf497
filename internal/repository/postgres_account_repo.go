package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/shopwithme/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

const accountColumns = `id, username, password, first_name, last_name, email,
	facebook_user_id, is_active, can_login, creation_date, last_login`

// scanAccount は1行をmodel.Accountに読み込む。
func scanAccount(row *sql.Row) (*model.Account, error) {
	a := &model.Account{}
	err := row.Scan(
		&a.ID, &a.Username, &a.Password, &a.FirstName, &a.LastName, &a.Email,
		&a.FacebookUserID, &a.IsActive, &a.CanLogin, &a.CreationDate, &a.LastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return a, nil
}

// loadShoppingLists はメンバーシップ集合を読み込んでアカウントに付与する。
func (r *PostgresAccountRepo) loadShoppingLists(ctx context.Context, a *model.Account) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT list_id FROM account_lists WHERE account_id = $1`,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load membership set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var listID string
		if err := rows.Scan(&listID); err != nil {
			return fmt.Errorf("failed to scan membership row: %w", err)
		}
		a.ShoppingLists = append(a.ShoppingLists, listID)
	}
	return rows.Err()
}

// FindByID は指定IDのアカウントをメンバーシップ集合付きで取得する。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil || a == nil {
		return a, err
	}
	if err := r.loadShoppingLists(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByUsername はusernameでアカウントを検索する。
func (r *PostgresAccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	a, err := scanAccount(row)
	if err != nil || a == nil {
		return a, err
	}
	if err := r.loadShoppingLists(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Create はアカウントを作成する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password, first_name, last_name, email,
			facebook_user_id, is_active, can_login, creation_date, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		account.ID, account.Username, account.Password, account.FirstName,
		account.LastName, account.Email, account.FacebookUserID,
		account.IsActive, account.CanLogin, account.CreationDate, account.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// UpdateProfile は氏名とメールアドレスを更新する。
func (r *PostgresAccountRepo) UpdateProfile(ctx context.Context, id, firstName, lastName, email string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts
		 SET first_name = $2, last_name = $3, email = $4
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id, firstName, lastName, email,
	)
	a, err := scanAccount(row)
	if err != nil || a == nil {
		return a, err
	}
	if err := r.loadShoppingLists(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Disable はアカウントを無効化する（isActive=false, canLogin=false）。
func (r *PostgresAccountRepo) Disable(ctx context.Context, id string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts
		 SET is_active = FALSE, can_login = FALSE
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id,
	)
	return scanAccount(row)
}

// UpdateLastLogin は最終ログイン日時を更新する。
func (r *PostgresAccountRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_login = $2 WHERE id = $1`,
		id, t,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// AddShoppingList はメンバーシップ集合にリストIDを追加する。
// ON CONFLICT DO NOTHINGにより既存IDの追加はno-opになる。
func (r *PostgresAccountRepo) AddShoppingList(ctx context.Context, accountID, listID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO account_lists (account_id, list_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		accountID, listID,
	)
	if err != nil {
		return fmt.Errorf("failed to add list to membership set: %w", err)
	}
	return nil
}

// RemoveShoppingList はメンバーシップ集合からリストIDを取り除く。
func (r *PostgresAccountRepo) RemoveShoppingList(ctx context.Context, accountID, listID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM account_lists WHERE account_id = $1 AND list_id = $2`,
		accountID, listID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove list from membership set: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
