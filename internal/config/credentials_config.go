package config

import (
	"os"
	"path/filepath"
	"time"
)

// Credential store backends selectable with CREDENTIAL_STORE.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreNone   = "none"
)

type CredentialConfig interface {
	GetCredentialStore() string
	GetCredentialFile() string
	GetRedisAddr() string
	GetRedisKeyPrefix() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type Credentials struct{}

var _ CredentialConfig = Credentials{}

func (Credentials) GetCredentialStore() string {
	switch s := GetEnv("CREDENTIAL_STORE", StoreFile); s {
	case StoreFile, StoreMemory, StoreRedis, StoreNone:
		return s
	default:
		return StoreFile
	}
}

// GetCredentialFile returns the path of the file backed credential store. An empty
// string means no home directory could be resolved.
func (Credentials) GetCredentialFile() string {
	if p := os.Getenv("CREDENTIAL_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".authshell", "credentials.json")
}

func (Credentials) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Credentials) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "authshell:")
}

func (Credentials) GetAccessTokenTTL() time.Duration {
	return GetDurationEnv("ACCESS_TOKEN_TTL", 7*24*time.Hour) // 7 days
}

func (Credentials) GetRefreshTokenTTL() time.Duration {
	return GetDurationEnv("REFRESH_TOKEN_TTL", 30*24*time.Hour) // 30 days
}
