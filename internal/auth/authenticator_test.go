package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestAuthenticator_Authenticate(t *testing.T) {
	a := NewAuthenticator(testSecret, []string{"key-one", " key-two ", ""})

	readToken, err := GenerateAccessToken("viewer", ScopeRead, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name          string
		apiKey        string
		authorization string
		wantScope     Scope
		wantMethod    string
		wantErr       error
	}{
		{name: "api key", apiKey: "key-one", wantScope: ScopeWrite, wantMethod: MethodAPIKey},
		{name: "trimmed api key", apiKey: "key-two", wantScope: ScopeWrite, wantMethod: MethodAPIKey},
		{name: "bad api key", apiKey: "nope", wantErr: ErrAPIKeyInvalid},
		{name: "bad key beats good token", apiKey: "nope", authorization: "Bearer " + readToken, wantErr: ErrAPIKeyInvalid},
		{name: "bearer", authorization: "Bearer " + readToken, wantScope: ScopeRead, wantMethod: MethodJWT},
		{name: "lowercase bearer", authorization: "bearer " + readToken, wantScope: ScopeRead, wantMethod: MethodJWT},
		{name: "bad token", authorization: "Bearer abc.def.ghi", wantErr: ErrTokenInvalid},
		{name: "basic auth", authorization: "Basic dXNlcjpwYXNz", wantErr: ErrUnauthenticated},
		{name: "empty bearer", authorization: "Bearer ", wantErr: ErrUnauthenticated},
		{name: "nothing", wantErr: ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Authenticate(tt.apiKey, tt.authorization)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if p.Scope != tt.wantScope || p.Method != tt.wantMethod {
				t.Errorf("principal = %+v", p)
			}
		})
	}
}

func TestAuthenticator_NoSecretRejectsTokens(t *testing.T) {
	token, err := GenerateAccessToken("x", ScopeWrite, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	a := NewAuthenticator("", []string{"k"})
	if _, err := a.Authenticate("", "Bearer "+token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate() error = %v, want ErrTokenInvalid", err)
	}
}

func TestScope_Allows(t *testing.T) {
	tests := []struct {
		scope  Scope
		method string
		want   bool
	}{
		{ScopeRead, http.MethodGet, true},
		{ScopeRead, http.MethodOptions, true},
		{ScopeRead, http.MethodPost, false},
		{ScopeRead, http.MethodPut, false},
		{ScopeWrite, http.MethodPut, true},
		{ScopeWrite, http.MethodDelete, true},
		{Scope(""), http.MethodGet, false},
	}
	for _, tt := range tests {
		if got := tt.scope.Allows(tt.method); got != tt.want {
			t.Errorf("%q.Allows(%s) = %v, want %v", tt.scope, tt.method, got, tt.want)
		}
	}
}
