package config

import (
	"fmt"
	"strconv"
	"time"
)

// MockAPIConfig configures the development backend in cmd/mockapi.
type MockAPIConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetResetTokenExpiry() time.Duration
	GetSeedUsers() bool
}

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetPort() string {
	port := GetEnv("PORT", "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (MockAPI) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}

func (MockAPI) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv("MOCK_ACCESS_TOKEN_EXPIRY", 15*time.Minute)
}

func (MockAPI) GetRefreshTokenExpiry() time.Duration {
	return GetDurationEnv("MOCK_REFRESH_TOKEN_EXPIRY", 30*24*time.Hour)
}

func (MockAPI) GetResetTokenExpiry() time.Duration {
	return 1 * time.Hour
}

// GetSeedUsers reports whether the demo admin, manager and user accounts are
// created on start. MOCK_SEED_USERS=false disables them.
func (MockAPI) GetSeedUsers() bool {
	seed, err := strconv.ParseBool(GetEnv("MOCK_SEED_USERS", "true"))
	if err != nil {
		return true
	}
	return seed
}
