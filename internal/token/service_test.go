package token

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/shopwithme/internal/model"
	"github.com/hitoshi/shopwithme/internal/repository"
)

// --- モック定義 ---

type mockTokenRepo struct {
	saveFn             func(ctx context.Context, token *model.SecurityToken) error
	findByTokenFn      func(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error)
	removeFn           func(ctx context.Context, apiAccessToken string) error
	removeAllForUserFn func(ctx context.Context, userID string) error
}

func (m *mockTokenRepo) Save(ctx context.Context, token *model.SecurityToken) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, token)
	}
	return nil
}

func (m *mockTokenRepo) FindByToken(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, apiAccessToken)
	}
	return nil, nil
}

func (m *mockTokenRepo) Remove(ctx context.Context, apiAccessToken string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, apiAccessToken)
	}
	return nil
}

func (m *mockTokenRepo) RemoveAllForUser(ctx context.Context, userID string) error {
	if m.removeAllForUserFn != nil {
		return m.removeAllForUserFn(ctx, userID)
	}
	return nil
}

var _ repository.TokenRepository = (*mockTokenRepo)(nil)

func validTokenString() string {
	return strings.Repeat("a", 32)
}

// --- テスト ---

func TestCreate_SavesSecurityToken(t *testing.T) {
	ctx := context.Background()

	var saved *model.SecurityToken
	repo := &mockTokenRepo{
		saveFn: func(ctx context.Context, token *model.SecurityToken) error {
			saved = token
			return nil
		},
	}
	svc := NewService(repo)

	now := time.Now()
	apiToken := &model.ApiAccessToken{
		AccessToken:    validTokenString(),
		IssueDate:      now,
		ExpirationDate: now.Add(24 * time.Hour),
		Application:    "mobile_app",
		UserID:         "user-id-1",
	}

	securityToken, err := svc.Create(ctx, apiToken, "fb-access-token")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if saved == nil {
		t.Fatal("expected token to be saved")
	}
	if securityToken.APIAccessToken != apiToken.AccessToken {
		t.Errorf("apiAccessToken = %q, want %q", securityToken.APIAccessToken, apiToken.AccessToken)
	}
	if securityToken.UserID != "user-id-1" {
		t.Errorf("userID = %q, want %q", securityToken.UserID, "user-id-1")
	}
	if securityToken.FacebookAccessToken != "fb-access-token" {
		t.Errorf("facebookAccessToken = %q, want %q", securityToken.FacebookAccessToken, "fb-access-token")
	}
	if !securityToken.ExpirationDate.Equal(apiToken.ExpirationDate) {
		t.Errorf("expirationDate = %v, want %v", securityToken.ExpirationDate, apiToken.ExpirationDate)
	}
}

func TestCreate_ShortToken_ReturnsValidationError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockTokenRepo{})

	apiToken := &model.ApiAccessToken{AccessToken: "too-short", UserID: "user-id-1"}

	_, err := svc.Create(ctx, apiToken, "fb-access-token")
	if err == nil {
		t.Fatal("expected error for short token")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

func TestCreate_EmptyFacebookToken_ReturnsValidationError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockTokenRepo{})

	apiToken := &model.ApiAccessToken{AccessToken: validTokenString(), UserID: "user-id-1"}

	_, err := svc.Create(ctx, apiToken, "")
	if err == nil {
		t.Fatal("expected error for empty facebook token")
	}
}

func TestCreate_SaveError_ReturnsError(t *testing.T) {
	ctx := context.Background()
	repo := &mockTokenRepo{
		saveFn: func(ctx context.Context, token *model.SecurityToken) error {
			return errors.New("db error")
		},
	}
	svc := NewService(repo)

	apiToken := &model.ApiAccessToken{AccessToken: validTokenString(), UserID: "user-id-1"}

	_, err := svc.Create(ctx, apiToken, "fb-access-token")
	if err == nil {
		t.Fatal("expected error from Create")
	}
}

func TestAuthorise_ValidToken_ReturnsTrue(t *testing.T) {
	ctx := context.Background()

	repo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
			return &model.SecurityToken{
				APIAccessToken: apiAccessToken,
				UserID:         "user-id-1",
				ExpirationDate: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}
	svc := NewService(repo)

	ok, err := svc.Authorise(ctx, validTokenString(), "user-id-1")
	if err != nil {
		t.Fatalf("Authorise() error = %v", err)
	}
	if !ok {
		t.Error("expected authorisation to succeed")
	}
}

func TestAuthorise_TokenNotFound_ReturnsFalseWithoutError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockTokenRepo{})

	ok, err := svc.Authorise(ctx, validTokenString(), "user-id-1")
	if err != nil {
		t.Fatalf("Authorise() error = %v", err)
	}
	if ok {
		t.Error("expected authorisation to fail for unknown token")
	}
}

func TestAuthorise_ExpiredToken_ReturnsFalseWithoutError(t *testing.T) {
	ctx := context.Background()

	repo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
			return &model.SecurityToken{
				APIAccessToken: apiAccessToken,
				UserID:         "user-id-1",
				ExpirationDate: time.Now().Add(-1 * time.Minute),
			}, nil
		},
	}
	svc := NewService(repo)

	ok, err := svc.Authorise(ctx, validTokenString(), "user-id-1")
	if err != nil {
		t.Fatalf("Authorise() error = %v", err)
	}
	if ok {
		t.Error("expected authorisation to fail for expired token")
	}
}

func TestAuthorise_UserMismatch_ReturnsFalseWithoutError(t *testing.T) {
	ctx := context.Background()

	repo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
			return &model.SecurityToken{
				APIAccessToken: apiAccessToken,
				UserID:         "user-id-1",
				ExpirationDate: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}
	svc := NewService(repo)

	ok, err := svc.Authorise(ctx, validTokenString(), "someone-else")
	if err != nil {
		t.Fatalf("Authorise() error = %v", err)
	}
	if ok {
		t.Error("expected authorisation to fail for user mismatch")
	}
}

func TestAuthorise_StorageError_ReturnsError(t *testing.T) {
	ctx := context.Background()

	repo := &mockTokenRepo{
		findByTokenFn: func(ctx context.Context, apiAccessToken string) (*model.SecurityToken, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo)

	_, err := svc.Authorise(ctx, validTokenString(), "user-id-1")
	if err == nil {
		t.Fatal("expected error from Authorise")
	}
}

func TestRemove_DelegatesToRepository(t *testing.T) {
	ctx := context.Background()

	var removed string
	repo := &mockTokenRepo{
		removeFn: func(ctx context.Context, apiAccessToken string) error {
			removed = apiAccessToken
			return nil
		},
	}
	svc := NewService(repo)

	if err := svc.Remove(ctx, validTokenString()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if removed != validTokenString() {
		t.Errorf("removed token = %q, want %q", removed, validTokenString())
	}
}
