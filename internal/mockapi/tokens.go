package mockapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-shell/access"
	"github.com/jrsteele09/go-auth-shell/users"
)

var errTokenRevoked = errors.New("token revoked")

func (s *Server) issueAccessToken(u users.User) (string, time.Duration, error) {
	now := NowTimeFunc()
	ttl := s.config.GetAccessTokenExpiry()
	jti := uuid.NewString()
	claims := access.Claims{
		Email: u.Email,
		Role:  u.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}

	s.mu.Lock()
	s.accessIDs[jti] = now.Add(ttl)
	s.mu.Unlock()
	return signed, ttl, nil
}

// parseAccessToken verifies signature, expiry and that the token has not been
// expired early through ExpireAccessTokens.
func (s *Server) parseAccessToken(token string) (*access.Claims, error) {
	claims := &access.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accessIDs[claims.ID]; !ok {
		return nil, errTokenRevoked
	}
	return claims, nil
}

func (s *Server) issueRefreshToken(userID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[token] = refreshRecord{userID: userID, expires: NowTimeFunc().Add(s.config.GetRefreshTokenExpiry())}
	return token
}

// rotateRefreshToken consumes token and returns the owning user id. A consumed or
// expired token is rejected.
func (s *Server) rotateRefreshToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.refreshTokens[token]
	if !ok {
		return "", false
	}
	delete(s.refreshTokens, token)
	if !NowTimeFunc().Before(rec.expires) {
		return "", false
	}
	return rec.userID, true
}

func (s *Server) issueResetToken(userID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTokens[token] = resetRecord{userID: userID, expires: NowTimeFunc().Add(s.config.GetResetTokenExpiry())}
	return token
}

func (s *Server) consumeResetToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.resetTokens[token]
	if !ok {
		return "", false
	}
	delete(s.resetTokens, token)
	if !NowTimeFunc().Before(rec.expires) {
		return "", false
	}
	return rec.userID, true
}

// revokeUserTokens drops the refresh tokens of userID, e.g. after a password
// reset or account deletion.
func (s *Server) revokeUserTokens(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, rec := range s.refreshTokens {
		if rec.userID == userID {
			delete(s.refreshTokens, token)
		}
	}
}
