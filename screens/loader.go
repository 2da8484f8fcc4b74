package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-auth-shell/apiclient"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// Loader tracks one remote fetch for a view: whether it is running, the last
// error and the last data received.
type Loader[T any] struct {
	mu      sync.RWMutex
	loading bool
	err     string
	data    T
	hasData bool
}

// Execute runs fetch, storing its data on success or its error on failure, and
// reports success. A panicking fetch is recorded as a failure.
func (l *Loader[T]) Execute(ctx context.Context, fetch func(context.Context) apiclient.Response[T]) (ok bool) {
	l.mu.Lock()
	l.loading = true
	l.err = ""
	l.mu.Unlock()

	defer func() {
		r := recover()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.loading = false
		if r != nil {
			l.err = fmt.Sprintf("%s: %v", unexpectedErrorMessage, r)
			ok = false
		}
	}()

	res := fetch(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	if !res.Success {
		l.err = res.Error
		if l.err == "" {
			l.err = apiclient.DefaultErrorMessage
		}
		return false
	}
	l.data = res.Data
	l.hasData = true
	return true
}

func (l *Loader[T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

func (l *Loader[T]) Error() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Data returns the last loaded value and whether one has been loaded.
func (l *Loader[T]) Data() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data, l.hasData
}

func (l *Loader[T]) SetData(data T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = data
	l.hasData = true
}

// Update replaces the loaded data with fn applied to it.
func (l *Loader[T]) Update(fn func(T) T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = fn(l.data)
}

func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.loading = false
	l.err = ""
	l.data = zero
	l.hasData = false
}
