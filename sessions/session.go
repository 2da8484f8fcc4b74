package sessions

import (
	"github.com/jrsteele09/go-auth-shell/users"
)

// Status is the authentication state of a Controller.
type Status int

const (
	StatusBootstrapping Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusBootstrapping:
		return "bootstrapping"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the observable authentication state. IsAuthenticated is true exactly
// when User is set.
type Session struct {
	User            *users.User
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// HasRole reports whether the session user holds one of roles.
func (s Session) HasRole(roles ...users.RoleType) bool {
	return s.User.HasRole(roles...)
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// initialSession is the state before bootstrap completes.
func initialSession() Session {
	return Session{Loading: true}
}
