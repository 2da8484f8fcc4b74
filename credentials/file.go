package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-shell/internal/errors"
)

var _ Medium = (*FileMedium)(nil)

// FileMedium persists entries as a JSON array in a single file readable only by
// the owner. Expired entries are pruned whenever the file is rewritten.
type FileMedium struct {
	path string
	mu   sync.Mutex
}

func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

func (f *FileMedium) Path() string {
	return f.path
}

func (f *FileMedium) Set(_ context.Context, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[entry.Name] = entry
	return f.save(entries)
}

func (f *FileMedium) Get(_ context.Context, name string) (Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return Entry{}, err
	}
	entry, ok := entries[name]
	if !ok || entry.Expired(NowTimeFunc()) {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (f *FileMedium) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return f.save(entries)
}

func (f *FileMedium) load() (map[string]Entry, error) {
	entries := make(map[string]Entry)
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	if len(b) == 0 {
		return entries, nil
	}

	var list []Entry
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode credential file: %w", err)
	}
	for _, e := range list {
		entries[e.Name] = e
	}
	return entries, nil
}

func (f *FileMedium) save(entries map[string]Entry) error {
	now := NowTimeFunc()
	list := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Expired(now) {
			continue
		}
		list = append(list, e)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
