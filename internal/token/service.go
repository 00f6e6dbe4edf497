package token

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/shopwithme/internal/model"
	"github.com/hitoshi/shopwithme/internal/repository"
)

// Service はセキュリティトークンの保存・検索・認可判定を提供する。
type Service struct {
	tokenRepo repository.TokenRepository
}

// NewService はServiceを生成する。
func NewService(tokenRepo repository.TokenRepository) *Service {
	return &Service{tokenRepo: tokenRepo}
}

// Create はAPIアクセストークンとFacebookトークンからセキュリティトークンを作成し永続化する。
func (s *Service) Create(ctx context.Context, apiToken *model.ApiAccessToken, facebookAccessToken string) (*model.SecurityToken, error) {
	if apiToken == nil || len(apiToken.AccessToken) < tokenLength {
		return nil, model.NewValidationError("APIアクセストークンが不正です")
	}
	if facebookAccessToken == "" {
		return nil, model.NewValidationError("Facebookアクセストークンは必須です")
	}

	securityToken := &model.SecurityToken{
		APIAccessToken:      apiToken.AccessToken,
		IssueDate:           apiToken.IssueDate,
		ExpirationDate:      apiToken.ExpirationDate,
		Application:         apiToken.Application,
		UserID:              apiToken.UserID,
		FacebookAccessToken: facebookAccessToken,
	}

	if err := s.tokenRepo.Save(ctx, securityToken); err != nil {
		return nil, fmt.Errorf("failed to save security token: %w", err)
	}

	return securityToken, nil
}

// FindByToken はAPIアクセストークン文字列でセキュリティトークンを検索する。
// 見つからない場合はnilを返す。
func (s *Service) FindByToken(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
	return s.tokenRepo.FindByToken(ctx, apiAccessToken)
}

// Remove は指定トークンを削除する。存在しないトークンの削除はエラーにならない。
func (s *Service) Remove(ctx context.Context, apiAccessToken string) error {
	return s.tokenRepo.Remove(ctx, apiAccessToken)
}

// RemoveAllForUser は指定ユーザーのトークンを全て削除する。
func (s *Service) RemoveAllForUser(ctx context.Context, userID string) error {
	return s.tokenRepo.RemoveAllForUser(ctx, userID)
}

// Authorise は指定トークンが指定ユーザーの有効なトークンであるかを判定する。
// トークンが存在しない・期限切れ・ユーザー不一致の場合はfalseを返し、エラーにはしない。
// ストレージ障害のみエラーを返す。
func (s *Service) Authorise(ctx context.Context, apiAccessToken, userID string) (bool, error) {
	securityToken, err := s.tokenRepo.FindByToken(ctx, apiAccessToken)
	if err != nil {
		return false, fmt.Errorf("failed to find security token: %w", err)
	}
	if securityToken == nil {
		return false, nil
	}
	if securityToken.IsExpired() {
		slog.Debug("expired token presented", slog.String("user_id", securityToken.UserID))
		return false, nil
	}
	if securityToken.UserID != userID {
		slog.Warn("token user mismatch",
			slog.String("token_user_id", securityToken.UserID),
			slog.String("requested_user_id", userID),
		)
		return false, nil
	}
	return true, nil
}
