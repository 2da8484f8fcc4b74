package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the single role a user holds.
type RoleType string

const (
	RoleUser    RoleType = "user"
	RoleManager RoleType = "manager"
	RoleAdmin   RoleType = "admin"
)

// MinPasswordLength mirrors the backend's registration rule.
const MinPasswordLength = 6

// AllRoles lists the roles in ascending privilege order.
var AllRoles = []RoleType{RoleUser, RoleManager, RoleAdmin}

func (r RoleType) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r RoleType) String() string {
	return string(r)
}

// ParseRole accepts a role literal case-insensitively.
func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the client-side view of an account. ID is the identity key.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      RoleType  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...RoleType) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Create is the admin payload for a new account.
type Create struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Role     RoleType `json:"role"`
}

// Update is a partial update; nil fields are left unchanged by the server.
type Update struct {
	Email    *string   `json:"email,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Role     *RoleType `json:"role,omitempty"`
	Password *string   `json:"password,omitempty"`
}

// ValidatePassword checks the minimum length accepted by the backend.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// APIUser is the wire shape the backend returns: snake_case timestamps, a numeric
// or string id, and a role given either as a name or as a role object.
type APIUser struct {
	ID        FlexibleID `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      WireRole   `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Normalize converts the wire shape into a User.
func (a APIUser) Normalize() User {
	return User{
		ID:        string(a.ID),
		Email:     a.Email,
		Name:      a.Name,
		Role:      RoleType(a.Role),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// FlexibleID decodes a JSON number or string into its string form.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexibleID(n.String())
	return nil
}

// WireRole decodes either "admin" or {"name":"admin",...}.
type WireRole RoleType

func (w *WireRole) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*w = WireRole(obj.Name)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	*w = WireRole(s)
	return nil
}

// NormalizeAll converts a list of wire users.
func NormalizeAll(in []APIUser) []User {
	out := make([]User, 0, len(in))
	for _, a := range in {
		out = append(out, a.Normalize())
	}
	return out
}
