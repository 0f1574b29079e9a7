package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 60 * time.Minute

// Claims extends the registered JWT claims with an access scope.
type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
}

// GenerateAccessToken creates a signed HS256 token for subject.
// A ttl of zero or less uses one hour.
//
// Parameters:
//   - subject: Token subject, required
//   - scope: ScopeRead or ScopeWrite
//   - secret: HMAC signing key
//   - ttl: Lifetime of the token
//
// Returns:
//   - string: Signed token
//   - error: ErrTokenInvalid for a missing subject or unknown scope, or a signing failure
func GenerateAccessToken(subject string, scope Scope, secret string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if !scope.Valid() {
		return "", fmt.Errorf("%w: unknown scope %q", ErrTokenInvalid, scope)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token's signature, expiry and required claims.
// Expired tokens return ErrTokenExpired; all other failures ErrTokenInvalid.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if !claims.Scope.Valid() {
		return nil, fmt.Errorf("%w: missing scope", ErrTokenInvalid)
	}

	return claims, nil
}
