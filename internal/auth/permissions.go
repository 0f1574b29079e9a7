package auth

import "net/http"

// safeMethods are allowed for the read scope.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Allows reports whether scope permits an HTTP method.
func (s Scope) Allows(method string) bool {
	switch s {
	case ScopeWrite:
		return true
	case ScopeRead:
		return safeMethods[method]
	default:
		return false
	}
}
