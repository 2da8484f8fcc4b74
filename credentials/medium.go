package credentials

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-shell/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrNotFound is returned by a Medium for missing or expired entries.
var ErrNotFound = errors.ErrNotFound

// Entry is a cookie-like named value with an absolute expiry.
type Entry struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path"`
	Expires  time.Time     `json:"expires"`
	Secure   bool          `json:"secure"`
	SameSite http.SameSite `json:"sameSite"`
}

// Expired reports whether the entry is past its expiry at now. A zero expiry never expires.
func (e Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// Medium is the durable backing of a Store.
type Medium interface {
	Set(ctx context.Context, entry Entry) error
	Get(ctx context.Context, name string) (Entry, error)
	Delete(ctx context.Context, name string) error
}
