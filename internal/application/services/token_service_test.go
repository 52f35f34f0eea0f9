package services_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	config "github.com/mailcode/registrator/configs"
	impl "github.com/mailcode/registrator/internal/application/services"
	"github.com/mailcode/registrator/internal/core/domain/auth"
)

func TestTokenService_Issue(t *testing.T) {
	jwtConfig := &config.JWTConfig{Secret: "test-secret", Issuer: "registrator", Audience: "registrator-clients"}
	ttl := 3 * time.Minute
	svc := impl.NewTokenService(jwtConfig, ttl)

	signed, err := svc.Issue("a@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := &auth.Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtConfig.Secret), nil
	}, jwt.WithIssuer("registrator"), jwt.WithAudience("registrator-clients"))
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if !token.Valid {
		t.Fatal("expected a valid token")
	}

	if claims.Email != "a@b.com" {
		t.Fatalf("unexpected email claim: %q", claims.Email)
	}

	expiry := claims.ExpiresAt.Time
	wantExpiry := time.Now().Add(ttl)
	if expiry.Before(wantExpiry.Add(-5*time.Second)) || expiry.After(wantExpiry.Add(5*time.Second)) {
		t.Fatalf("token expiry %v not within the code TTL window", expiry)
	}
}

func TestTokenService_WrongKeyRejected(t *testing.T) {
	svc := impl.NewTokenService(&config.JWTConfig{Secret: "test-secret", Issuer: "i", Audience: "a"}, time.Minute)

	signed, err := svc.Issue("a@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = jwt.ParseWithClaims(signed, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	if err == nil {
		t.Fatal("expected signature verification to fail")
	}
}
