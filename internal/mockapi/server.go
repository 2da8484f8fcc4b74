// Package mockapi is an in-memory implementation of the backend API used for
// development and tests. It issues HS256 JWT access tokens and rotating opaque
// refresh tokens.
package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-auth-shell/internal/config"
	"github.com/jrsteele09/go-auth-shell/users"
	"github.com/rs/zerolog"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type Config interface {
	config.MockAPIConfig
	config.CorsConfig
	GetEnv() string
}

type refreshRecord struct {
	userID  string
	expires time.Time
}

type resetRecord struct {
	userID  string
	expires time.Time
}

type Server struct {
	router   *mux.Router
	handler  http.Handler
	config   Config
	accounts users.AccountRepo
	logger   zerolog.Logger
	secret   []byte

	mu            sync.Mutex
	accessIDs     map[string]time.Time // jti -> expiry of every live access token
	refreshTokens map[string]refreshRecord
	resetTokens   map[string]resetRecord

	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New builds the mock backend over accounts, seeding the demo accounts when the
// configuration asks for them.
func New(cfg Config, accounts users.AccountRepo, opts ...Option) (*Server, error) {
	if cfg.GetJWTSecret() == "" {
		return nil, errors.New("[mockapi New] JWT secret is required")
	}
	s := &Server{
		router:        mux.NewRouter(),
		config:        cfg,
		accounts:      accounts,
		logger:        zerolog.Nop(),
		secret:        []byte(cfg.GetJWTSecret()),
		accessIDs:     make(map[string]time.Time),
		refreshTokens: make(map[string]refreshRecord),
		resetTokens:   make(map[string]resetRecord),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.GetSeedUsers() {
		if err := s.seed(); err != nil {
			return nil, fmt.Errorf("[mockapi New] failed to seed accounts: %w", err)
		}
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RefreshCalls returns how many refresh requests have been received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// ExpireAccessTokens invalidates every access token issued so far, as if they had
// all reached their expiry.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessIDs = make(map[string]time.Time)
}

// FailRefresh makes every refresh request fail with 401 while set.
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// RevokeRefreshTokens drops every issued refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = make(map[string]refreshRecord)
}
