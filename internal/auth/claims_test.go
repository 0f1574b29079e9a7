package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("sensor-gateway", ScopeWrite, testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "sensor-gateway" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "sensor-gateway")
	}
	if claims.Scope != ScopeWrite {
		t.Errorf("Scope = %q, want %q", claims.Scope, ScopeWrite)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 15*time.Minute {
		t.Errorf("ttl = %v, want 15m", ttl)
	}
}

func TestGenerateAccessToken_Defaults(t *testing.T) {
	token, err := GenerateAccessToken("viewer", ScopeRead, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != time.Hour {
		t.Errorf("default ttl = %v, want 1h", ttl)
	}
}

func TestGenerateAccessToken_Rejects(t *testing.T) {
	if _, err := GenerateAccessToken("", ScopeRead, testSecret, time.Minute); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("empty subject error = %v", err)
	}
	if _, err := GenerateAccessToken("x", Scope("admin"), testSecret, time.Minute); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("bad scope error = %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("x", ScopeRead, "correct-secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if _, err := ParseToken(token, "wrong-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not-a-valid-jwt", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
		Scope: ScopeRead,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ParseToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestParseToken_MissingScope(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	if _, err := ParseToken(token, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Scope: ScopeWrite,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	if _, err := ParseToken(token, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken(HS512) error = %v, want ErrTokenInvalid", err)
	}
}
