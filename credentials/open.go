package credentials

import (
	"github.com/jrsteele09/go-auth-shell/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Open builds the Store selected by configuration. The returned close function
// releases any connection the medium holds and is always safe to call.
func Open(cfg config.CredentialConfig, logger zerolog.Logger) (*Store, func() error) {
	opts := []Option{
		WithLogger(logger),
		WithTTLs(cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL()),
	}
	noClose := func() error { return nil }

	switch cfg.GetCredentialStore() {
	case config.StoreMemory:
		return NewStore(NewMemoryMedium(), opts...), noClose
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		return NewStore(NewRedisMedium(client, cfg.GetRedisKeyPrefix()), opts...), client.Close
	case config.StoreNone:
		logger.Info().Msg("credential storage disabled")
		return NewStore(nil, opts...), noClose
	default:
		path := cfg.GetCredentialFile()
		if path == "" {
			logger.Warn().Msg("no home directory; credential storage unavailable")
			return NewStore(nil, opts...), noClose
		}
		return NewStore(NewFileMedium(path), opts...), noClose
	}
}
