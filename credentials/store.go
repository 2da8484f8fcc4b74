// Package credentials persists the access and refresh credentials between runs.
package credentials

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-shell/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Fixed entry names.
const (
	AccessTokenName  = "accessToken"
	RefreshTokenName = "refreshToken"
)

const (
	DefaultAccessTTL  = 7 * 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Pair is the credential pair held by one client.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Token returns the pair as an OAuth2 bearer token.
func (p Pair) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
}

// Store reads and writes named credentials on a Medium. A Store without a medium
// (or a nil *Store) behaves as if durable storage were unavailable: reads return
// absent and writes are dropped. Medium failures are logged, never returned.
type Store struct {
	medium     Medium
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

type Option func(*Store)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTTLs overrides the access and refresh expiries. Non-positive values keep the defaults.
func WithTTLs(access, refresh time.Duration) Option {
	return func(s *Store) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

func NewStore(medium Medium, opts ...Option) *Store {
	s := &Store{
		medium:     medium,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a durable medium backs the store.
func (s *Store) Available() bool {
	return s != nil && s.medium != nil
}

// Check returns ErrStorageUnavailable when no durable medium backs the store.
func (s *Store) Check() error {
	if !s.Available() {
		return errors.ErrStorageUnavailable
	}
	return nil
}

// Write stores value under name for ttl.
func (s *Store) Write(ctx context.Context, name, value string, ttl time.Duration) {
	if !s.Available() {
		return
	}
	entry := Entry{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  NowTimeFunc().Add(ttl),
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if err := s.medium.Set(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("credential write dropped")
	}
}

// Read returns the value stored under name, or false when absent or expired.
func (s *Store) Read(ctx context.Context, name string) (string, bool) {
	if !s.Available() {
		return "", false
	}
	entry, err := s.medium.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("name", name).Msg("credential read failed")
		}
		return "", false
	}
	if entry.Expired(NowTimeFunc()) || entry.Value == "" {
		return "", false
	}
	return entry.Value, true
}

// Delete removes name. Deleting an absent entry is not an error.
func (s *Store) Delete(ctx context.Context, name string) {
	if !s.Available() {
		return
	}
	if err := s.medium.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Str("name", name).Msg("credential delete dropped")
	}
}

func (s *Store) SaveAccessToken(ctx context.Context, token string) {
	s.Write(ctx, AccessTokenName, token, s.ttl(true))
}

func (s *Store) SaveRefreshToken(ctx context.Context, token string) {
	s.Write(ctx, RefreshTokenName, token, s.ttl(false))
}

func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	return s.Read(ctx, AccessTokenName)
}

func (s *Store) RefreshToken(ctx context.Context) (string, bool) {
	return s.Read(ctx, RefreshTokenName)
}

// Pair returns whatever credentials are currently stored.
func (s *Store) Pair(ctx context.Context) Pair {
	access, _ := s.AccessToken(ctx)
	refresh, _ := s.RefreshToken(ctx)
	return Pair{AccessToken: access, RefreshToken: refresh}
}

// Clear deletes both credentials.
func (s *Store) Clear(ctx context.Context) {
	s.Delete(ctx, AccessTokenName)
	s.Delete(ctx, RefreshTokenName)
}

func (s *Store) ttl(access bool) time.Duration {
	if s == nil {
		return 0
	}
	if access {
		return s.accessTTL
	}
	return s.refreshTTL
}
