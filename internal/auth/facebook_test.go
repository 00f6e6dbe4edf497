package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/shopwithme/internal/model"
)

func TestVerifyAccessToken_ValidToken_ReturnsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("access_token"); got != "fb-token-valid" {
			t.Errorf("access_token = %q, want %q", got, "fb-token-valid")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"fb-123","username":"valerio.gheri","first_name":"Valerio","last_name":"Gheri","email":"valerio@example.com"}`))
	}))
	defer server.Close()

	provider := NewFacebookProvider(FacebookProviderConfig{GraphURL: server.URL})

	profile, err := provider.VerifyAccessToken(context.Background(), "fb-token-valid")
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}

	if profile.ID != "fb-123" {
		t.Errorf("id = %q, want %q", profile.ID, "fb-123")
	}
	if profile.Username != "valerio.gheri" {
		t.Errorf("username = %q, want %q", profile.Username, "valerio.gheri")
	}
	if profile.FirstName != "Valerio" || profile.LastName != "Gheri" {
		t.Errorf("name = %q %q, want Valerio Gheri", profile.FirstName, profile.LastName)
	}
	if profile.Email != "valerio@example.com" {
		t.Errorf("email = %q, want %q", profile.Email, "valerio@example.com")
	}
}

func TestVerifyAccessToken_NoUsername_FallsBackToID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"fb-456","first_name":"Mario","last_name":"Rossi"}`))
	}))
	defer server.Close()

	provider := NewFacebookProvider(FacebookProviderConfig{GraphURL: server.URL})

	profile, err := provider.VerifyAccessToken(context.Background(), "fb-token")
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if profile.Username != "fb-456" {
		t.Errorf("username = %q, want fallback to id %q", profile.Username, "fb-456")
	}
}

func TestVerifyAccessToken_InvalidToken_ReturnsBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`))
	}))
	defer server.Close()

	provider := NewFacebookProvider(FacebookProviderConfig{GraphURL: server.URL})

	_, err := provider.VerifyAccessToken(context.Background(), "fb-token-bad")
	if err == nil {
		t.Fatal("expected error for invalid token")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeBadCredentials {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeBadCredentials)
	}
}

func TestVerifyAccessToken_MalformedResponse_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not-json`))
	}))
	defer server.Close()

	provider := NewFacebookProvider(FacebookProviderConfig{GraphURL: server.URL})

	_, err := provider.VerifyAccessToken(context.Background(), "fb-token")
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("expected plain error, got APIError %v", apiErr)
	}
}

func TestVerifyAccessToken_EmptyID_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"first_name":"NoID"}`))
	}))
	defer server.Close()

	provider := NewFacebookProvider(FacebookProviderConfig{GraphURL: server.URL})

	_, err := provider.VerifyAccessToken(context.Background(), "fb-token")
	if err == nil {
		t.Fatal("expected error for response without id")
	}
}
