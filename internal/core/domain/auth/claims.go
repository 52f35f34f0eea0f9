package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the access token claim set: the verified email plus the
// registered issuer, audience and expiry claims. The token is stateless;
// expiry is the only invalidation mechanism.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
