// Package account はアカウント管理のドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/shopwithme/internal/model"
	"github.com/hitoshi/shopwithme/internal/repository"
	"github.com/hitoshi/shopwithme/internal/security"
)

// CreateInput はアカウント作成の入力。
type CreateInput struct {
	Username       string
	Password       string
	FirstName      string
	LastName       string
	Email          string
	FacebookUserID string
}

// UpdateInput はプロフィール更新の入力。
type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
}

// Service はアカウント管理のサービス層。
type Service struct {
	accountRepo repository.AccountRepository
	sanitizer   security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(accountRepo repository.AccountRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		accountRepo: accountRepo,
		sanitizer:   sanitizer,
	}
}

// Create はアカウントを新規作成する。
// username、firstName、lastNameは必須。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Account, error) {
	username := s.sanitizer.Sanitize(input.Username)
	firstName := s.sanitizer.Sanitize(input.FirstName)
	lastName := s.sanitizer.Sanitize(input.LastName)
	email := s.sanitizer.Sanitize(input.Email)

	if username == "" {
		return nil, model.NewValidationError("usernameは必須です")
	}
	if firstName == "" || lastName == "" {
		return nil, model.NewValidationError("firstNameとlastNameは必須です")
	}

	existing, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("アカウントの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewValidationError("このusernameは既に使用されています")
	}

	account := &model.Account{
		ID:             uuid.New().String(),
		Username:       username,
		Password:       input.Password,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		FacebookUserID: input.FacebookUserID,
		IsActive:       true,
		CanLogin:       true,
		CreationDate:   time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("アカウントの作成に失敗しました: %w", err)
	}

	slog.Info("account created",
		slog.String("user_id", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// GetByUsername はusernameでアカウントを取得する。
func (s *Service) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	if username == "" {
		return nil, model.NewValidationError("usernameは必須です")
	}

	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("アカウントの検索に失敗しました: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError()
	}
	return account, nil
}

// GetByID はIDでアカウントをメンバーシップ集合付きで取得する。
func (s *Service) GetByID(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError()
	}
	return account, nil
}

// Update は氏名とメールアドレスを更新し、更新後のアカウントを返す。
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*model.Account, error) {
	firstName := s.sanitizer.Sanitize(input.FirstName)
	lastName := s.sanitizer.Sanitize(input.LastName)
	email := s.sanitizer.Sanitize(input.Email)

	if firstName == "" || lastName == "" {
		return nil, model.NewValidationError("firstNameとlastNameは必須です")
	}

	updated, err := s.accountRepo.UpdateProfile(ctx, id, firstName, lastName, email)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewAccountNotFoundError()
	}
	return updated, nil
}

// Disable はアカウントを論理的に無効化する（isActive=false, canLogin=false）。
func (s *Service) Disable(ctx context.Context, id string) (*model.Account, error) {
	disabled, err := s.accountRepo.Disable(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アカウントの無効化に失敗しました: %w", err)
	}
	if disabled == nil {
		return nil, model.NewAccountNotFoundError()
	}

	slog.Info("account disabled", slog.String("user_id", id))
	return disabled, nil
}
