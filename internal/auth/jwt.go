// Package auth issues and verifies the bearer tokens used by every
// authenticated endpoint, and provides the gin gates that enforce them.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// UserTokenTTL is the lifetime of a regular user token.
	UserTokenTTL = 30 * 24 * time.Hour
	// AdminTokenTTL is the lifetime of an administrator token.
	AdminTokenTTL = 24 * time.Hour
)

type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// SignUserToken issues a 30-day token for a regular user.
func SignUserToken(secret []byte, userID string) (string, error) {
	return sign(secret, userID, false, UserTokenTTL)
}

// SignAdminToken issues a 1-day token carrying the admin privilege flag.
func SignAdminToken(secret []byte, adminID string) (string, error) {
	return sign(secret, adminID, true, AdminTokenTTL)
}

func sign(secret []byte, subject string, isAdmin bool, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  subject,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse verifies the signature and expiry and returns the claims.
func Parse(secret []byte, tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
