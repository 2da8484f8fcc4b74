package credentials

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-shell/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Medium = (*RedisMedium)(nil)

// RedisMedium stores each entry as a plain string key with a native TTL.
type RedisMedium struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisMedium(client redis.UniversalClient, prefix string) *RedisMedium {
	return &RedisMedium{client: client, prefix: prefix}
}

func (r *RedisMedium) key(name string) string {
	return r.prefix + name
}

func (r *RedisMedium) Set(ctx context.Context, entry Entry) error {
	if entry.Expires.IsZero() {
		return r.client.Set(ctx, r.key(entry.Name), entry.Value, 0).Err()
	}
	ttl := entry.Expires.Sub(NowTimeFunc())
	if ttl <= 0 {
		return r.Delete(ctx, entry.Name)
	}
	return r.client.Set(ctx, r.key(entry.Name), entry.Value, ttl).Err()
}

func (r *RedisMedium) Get(ctx context.Context, name string) (Entry, error) {
	value, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return Entry{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

func (r *RedisMedium) Delete(ctx context.Context, name string) error {
	return r.client.Del(ctx, r.key(name)).Err()
}
