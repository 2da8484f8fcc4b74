package users

// Account is the backend-side record behind a User.
type Account struct {
	User
	PasswordHash string
}

// AccountRepo stores accounts for the mock backend.
type AccountRepo interface {
	Upsert(account *Account) error
	Delete(id string) error
	GetByEmail(email string) (*Account, error)
	GetByID(id string) (*Account, error)
	List() ([]*Account, error)
	Count() int
}
