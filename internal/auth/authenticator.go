package auth

import (
	"crypto/subtle"
	"strings"
)

// Authenticator checks API keys and bearer tokens.
//
// Thread Safety: immutable after construction; safe for concurrent use.
type Authenticator struct {
	secret string
	keys   [][]byte
}

// NewAuthenticator creates an Authenticator. An empty secret disables bearer
// tokens; no keys disables API keys.
func NewAuthenticator(secret string, apiKeys []string) *Authenticator {
	a := &Authenticator{secret: secret}
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			a.keys = append(a.keys, []byte(k))
		}
	}
	return a
}

// ValidAPIKey compares key against every configured key in constant time.
func (a *Authenticator) ValidAPIKey(key string) bool {
	if key == "" {
		return false
	}
	found := 0
	for _, k := range a.keys {
		found |= subtle.ConstantTimeCompare(k, []byte(key))
	}
	return found == 1
}

// Authenticate resolves the caller from an X-API-Key value or an
// Authorization header. The API key is checked first.
func (a *Authenticator) Authenticate(apiKey, authorization string) (*Principal, error) {
	if apiKey != "" {
		if !a.ValidAPIKey(apiKey) {
			return nil, ErrAPIKeyInvalid
		}
		return &Principal{Subject: "api-key", Scope: ScopeWrite, Method: MethodAPIKey}, nil
	}

	token, ok := bearerToken(authorization)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if a.secret == "" {
		return nil, ErrTokenInvalid
	}

	claims, err := ParseToken(token, a.secret)
	if err != nil {
		return nil, err
	}
	return &Principal{Subject: claims.Subject, Scope: claims.Scope, Method: MethodJWT}, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
