package access

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims the shell reads: sub, email, role and exp.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// PeekClaims decodes a JWT access token without verifying its signature. The
// result is a routing hint only; the server remains the authority.
func PeekClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiredAt reports whether the token had expired at now. Tokens without exp
// never expire.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
