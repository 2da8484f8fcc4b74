package mockapi

import (
	"github.com/jrsteele09/go-auth-shell/users"
)

// DemoAccount is a seeded login.
type DemoAccount struct {
	Email    string
	Name     string
	Password string
	Role     users.RoleType
}

var DemoAccounts = []DemoAccount{
	{Email: "admin@example.com", Name: "Admin", Password: "admin123", Role: users.RoleAdmin},
	{Email: "manager@example.com", Name: "Manager", Password: "manager123", Role: users.RoleManager},
	{Email: "user@example.com", Name: "User", Password: "user123", Role: users.RoleUser},
}

func (s *Server) seed() error {
	for _, demo := range DemoAccounts {
		if _, err := s.accounts.GetByEmail(demo.Email); err == nil {
			continue
		}
		hash, err := users.HashPassword(demo.Password)
		if err != nil {
			return err
		}
		account := &users.Account{
			User:         users.User{Email: demo.Email, Name: demo.Name, Role: demo.Role},
			PasswordHash: hash,
		}
		if err := s.accounts.Upsert(account); err != nil {
			return err
		}
		s.logger.Debug().Str("email", demo.Email).Str("role", demo.Role.String()).Msg("seeded demo account")
	}
	return nil
}
