package auth

import "errors"

// Scope is the access level granted to a caller.
type Scope string

const (
	// ScopeRead allows safe methods only.
	ScopeRead Scope = "read"

	// ScopeWrite allows every method.
	ScopeWrite Scope = "write"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeRead || s == ScopeWrite
}

// Credential kinds recorded on a Principal.
const (
	MethodAPIKey = "api_key"
	MethodJWT    = "jwt"
)

// Principal is an authenticated caller.
type Principal struct {
	Subject string
	Scope   Scope
	Method  string
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrAPIKeyInvalid   = errors.New("invalid API key")
	ErrForbidden       = errors.New("insufficient permissions")
)
