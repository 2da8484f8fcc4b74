package fakeuserrepo

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-shell/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

var ErrNotFound = errors.New("not found")

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type FakeAccountRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // lower-cased email to account id
	lock     sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
	}
}

// Upsert stores a copy of account, assigning an id and timestamps when missing.
func (r *FakeAccountRepo) Upsert(account *users.Account) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := NowTimeFunc().UTC()
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	if existing, ok := r.accounts[account.ID]; ok {
		delete(r.emailIds, strings.ToLower(existing.Email))
	}
	stored := *account
	r.accounts[account.ID] = &stored
	r.emailIds[strings.ToLower(account.Email)] = account.ID
	return nil
}

func (r *FakeAccountRepo) Delete(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.emailIds, strings.ToLower(a.Email))
	delete(r.accounts, id)
	return nil
}

func (r *FakeAccountRepo) GetByEmail(email string) (*users.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	a := *r.accounts[id]
	return &a, nil
}

func (r *FakeAccountRepo) GetByID(id string) (*users.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// List returns copies of all accounts, newest first.
func (r *FakeAccountRepo) List() ([]*users.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]*users.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FakeAccountRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.accounts)
}
