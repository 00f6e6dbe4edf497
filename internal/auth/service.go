package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/shopwithme/internal/model"
	"github.com/hitoshi/shopwithme/internal/repository"
)

// TokenIssuer はAPIアクセストークンの発行インターフェース。
type TokenIssuer interface {
	// Issue は指定ユーザー向けの新しいAPIアクセストークンを発行する。
	Issue(userID, application string) (*model.ApiAccessToken, error)
}

// TokenStore はセキュリティトークンの保存・検索・破棄インターフェース。
type TokenStore interface {
	// Create はセキュリティトークンを作成し永続化する。
	Create(ctx context.Context, apiToken *model.ApiAccessToken, facebookAccessToken string) (*model.SecurityToken, error)
	// FindByToken はトークン文字列でセキュリティトークンを検索する。見つからない場合はnil。
	FindByToken(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error)
	// Remove は指定トークンを削除する。
	Remove(ctx context.Context, apiAccessToken string) error
}

// LoginResult はモバイルログイン成功時にクライアントへ返す情報。
type LoginResult struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ApiAccessToken string `json:"apiAccessToken"`
}

// Service はFacebookトークンによるログインとログアウトのビジネスロジックを提供する。
type Service struct {
	provider    IdentityProvider
	accountRepo repository.AccountRepository
	issuer      TokenIssuer
	tokens      TokenStore
}

// NewService はServiceを生成する。
func NewService(
	provider IdentityProvider,
	accountRepo repository.AccountRepository,
	issuer TokenIssuer,
	tokens TokenStore,
) *Service {
	return &Service{
		provider:    provider,
		accountRepo: accountRepo,
		issuer:      issuer,
		tokens:      tokens,
	}
}

// Login はFacebookアクセストークンを検証してログインし、APIアクセストークンを発行する。
// 未登録ユーザーの場合はアカウントを自動作成する。
// 登録済みユーザーのFacebookユーザーIDが検証結果と一致しない場合はログインを拒否する。
func (s *Service) Login(ctx context.Context, facebookAccessToken, application string) (*LoginResult, error) {
	if facebookAccessToken == "" {
		return nil, model.NewValidationError("Facebookアクセストークンは必須です")
	}
	if application == "" {
		return nil, model.NewValidationError("applicationは必須です")
	}

	// 1. Facebook Graph APIでトークンを検証し、プロフィールを取得
	profile, err := s.provider.VerifyAccessToken(ctx, facebookAccessToken)
	if err != nil {
		return nil, err
	}

	// 2. usernameで既存アカウントを検索
	account, err := s.accountRepo.FindByUsername(ctx, profile.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account == nil {
		// 3a. 新規ユーザー: アカウントを自動作成
		account = &model.Account{
			ID:             uuid.New().String(),
			Username:       profile.Username,
			FirstName:      profile.FirstName,
			LastName:       profile.LastName,
			Email:          profile.Email,
			FacebookUserID: profile.ID,
			IsActive:       true,
			CanLogin:       true,
			CreationDate:   time.Now(),
		}
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("new account created from facebook login",
			slog.String("user_id", account.ID),
			slog.String("username", account.Username),
		)
	} else {
		// 3b. 既存ユーザー: 主張するユーザーと検証結果の一致を確認
		if account.FacebookUserID != "" && account.FacebookUserID != profile.ID {
			slog.Warn("facebook user id mismatch",
				slog.String("username", profile.Username),
				slog.String("stored_facebook_user_id", account.FacebookUserID),
				slog.String("verified_facebook_user_id", profile.ID),
			)
			return nil, model.NewUnauthorizedError()
		}
		if !account.CanLogin {
			return nil, model.NewUnauthorizedError()
		}

		// Facebook側でプロフィールが変わっていれば保存済みアカウントに反映する
		if account.ProfileChanged(profile.FirstName, profile.LastName, profile.Email) {
			updated, err := s.accountRepo.UpdateProfile(ctx, account.ID, profile.FirstName, profile.LastName, profile.Email)
			if err != nil {
				return nil, fmt.Errorf("failed to refresh profile: %w", err)
			}
			if updated != nil {
				account = updated
			}
			slog.Info("profile refreshed from facebook",
				slog.String("user_id", account.ID),
			)
		}
	}

	// 4. APIアクセストークンを発行し、セキュリティトークンとして保存
	apiToken, err := s.issuer.Issue(account.ID, application)
	if err != nil {
		return nil, fmt.Errorf("failed to issue api access token: %w", err)
	}
	if _, err := s.tokens.Create(ctx, apiToken, facebookAccessToken); err != nil {
		return nil, fmt.Errorf("failed to create security token: %w", err)
	}

	// 5. 最終ログイン日時を更新
	if err := s.accountRepo.UpdateLastLogin(ctx, account.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", account.ID),
		slog.String("application", application),
	)

	return &LoginResult{
		UserID:         account.ID,
		Username:       account.Username,
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		ApiAccessToken: apiToken.AccessToken,
	}, nil
}

// Logout は指定ユーザーのセキュリティトークンを破棄する。
// トークンが既に存在しない場合もエラーにはしない。
func (s *Service) Logout(ctx context.Context, userID, apiAccessToken string) error {
	if userID == "" {
		return model.NewValidationError("userIdは必須です")
	}
	if apiAccessToken == "" {
		return model.NewValidationError("apiAccessTokenは必須です")
	}

	securityToken, err := s.tokens.FindByToken(ctx, apiAccessToken)
	if err != nil {
		return fmt.Errorf("failed to find security token: %w", err)
	}
	if securityToken == nil {
		return nil
	}

	if err := s.tokens.Remove(ctx, apiAccessToken); err != nil {
		return fmt.Errorf("failed to remove security token: %w", err)
	}

	slog.Info("user logged out", slog.String("user_id", userID))
	return nil
}
