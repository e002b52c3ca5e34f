package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hondealz/internal/auth"
)

func authTestHandler(t *testing.T, tokens *auth.TokenService) http.Handler {
	t.Helper()
	return JWTAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context inside protected handler")
		}
		fmt.Fprintf(w, "%d", id)
	}))
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	handler := authTestHandler(t, tokens)

	token, _, err := tokens.IssueAccessToken(42)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "42" {
		t.Fatalf("expected user id 42 in context, got %q", got)
	}
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	handler := authTestHandler(t, tokens)

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestJWTAuthForgedTokenIsUnauthorized(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	other := auth.NewTokenService("other-secret", 30*time.Minute)
	handler := authTestHandler(t, tokens)

	forged, _, err := other.IssueAccessToken(42)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Verification Failed") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestJWTAuthExpiredTokenIsForbidden(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	handler := authTestHandler(t, tokens)

	// Authentic signature, past expiry. This is 403, not 401.
	expired, err := tokens.Encode(auth.AccessTokenPayload{
		UserID:    42,
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Token Expire") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
