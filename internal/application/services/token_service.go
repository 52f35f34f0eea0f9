package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	config "github.com/mailcode/registrator/configs"
	"github.com/mailcode/registrator/internal/core/domain/auth"
	"github.com/mailcode/registrator/internal/core/ports"
)

// TokenService signs HS256 access tokens for verified emails. The token
// lifetime equals the code issuance window; there is no revocation list,
// expiry is the only invalidation mechanism.
type TokenService struct {
	jwtConfig *config.JWTConfig
	ttl       time.Duration
}

func NewTokenService(jwtConfig *config.JWTConfig, ttl time.Duration) ports.TokenIssuer {
	return &TokenService{jwtConfig: jwtConfig, ttl: ttl}
}

func (s *TokenService) Issue(email string) (string, error) {
	now := time.Now()

	claims := &auth.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtConfig.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtConfig.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}
