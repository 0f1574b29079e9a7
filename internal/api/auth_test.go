package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/apiconsole/internal/auth"
)

func authServer(t *testing.T) http.Handler {
	t.Helper()
	srv, _ := testServer(t, func(d *Deps) { d.Security.Auth.Enabled = true })
	return srv.Handler()
}

func token(t *testing.T, scope auth.Scope, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken("tester", scope, testJWTSecret, ttl)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok
}

func expiredToken(t *testing.T) string {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "tester",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
		Scope: auth.ScopeWrite,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return tok
}

func TestAuth_Required(t *testing.T) {
	h := authServer(t)
	validCreate := `{"unit_name":"a","suhu":1,"kelembapan":2}`

	tests := []struct {
		name     string
		method   string
		body     string
		headers  []string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "no credentials",
			method:   http.MethodGet,
			wantCode: http.StatusUnauthorized,
			wantMsg:  auth.ErrUnauthenticated.Error(),
		},
		{
			name:     "wrong api key",
			method:   http.MethodGet,
			headers:  []string{"X-API-Key", "nope"},
			wantCode: http.StatusUnauthorized,
			wantMsg:  auth.ErrAPIKeyInvalid.Error(),
		},
		{
			name:     "api key",
			method:   http.MethodPost,
			body:     validCreate,
			headers:  []string{"X-API-Key", "test-api-key"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "write token",
			method:   http.MethodPost,
			body:     validCreate,
			headers:  []string{"Authorization", "Bearer " + token(t, auth.ScopeWrite, time.Hour)},
			wantCode: http.StatusCreated,
		},
		{
			name:     "read token may list",
			method:   http.MethodGet,
			headers:  []string{"Authorization", "Bearer " + token(t, auth.ScopeRead, time.Hour)},
			wantCode: http.StatusOK,
		},
		{
			name:     "read token may not create",
			method:   http.MethodPost,
			body:     validCreate,
			headers:  []string{"Authorization", "Bearer " + token(t, auth.ScopeRead, time.Hour)},
			wantCode: http.StatusForbidden,
			wantMsg:  auth.ErrForbidden.Error(),
		},
		{
			name:     "garbage token",
			method:   http.MethodGet,
			headers:  []string{"Authorization", "Bearer not.a.jwt"},
			wantCode: http.StatusUnauthorized,
			wantMsg:  auth.ErrTokenInvalid.Error(),
		},
		{
			name:     "expired token",
			method:   http.MethodGet,
			headers:  []string{"Authorization", "Bearer " + expiredToken(t)},
			wantCode: http.StatusUnauthorized,
			wantMsg:  auth.ErrTokenExpired.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, "/api/dth22", tt.body, tt.headers...)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantMsg != "" {
				if msg := errorBody(t, w); msg != tt.wantMsg {
					t.Errorf("error = %q, want %q", msg, tt.wantMsg)
				}
			}
			if w.Code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry WWW-Authenticate")
			}
		})
	}
}

func TestAuth_PreflightAndHealthAreOpen(t *testing.T) {
	h := authServer(t)

	if w := do(t, h, http.MethodOptions, "/api/dth22", ""); w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}
