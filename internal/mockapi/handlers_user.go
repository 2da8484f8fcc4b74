package mockapi

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-shell/internal/utils"
	"github.com/jrsteele09/go-auth-shell/users"
)

// currentAccount loads the account behind the request's access token.
func (s *Server) currentAccount(w http.ResponseWriter, r *http.Request) (*users.Account, bool) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}
	account, err := s.accounts.GetByID(claims.Subject)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return account, true
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toWire(account.User)})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": toWire(account.User)})
}

// handleUpdateProfile accepts name and password; email and role cannot be
// changed here.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(w, r)
	if !ok {
		return
	}
	var update users.Update
	if err := decodeBody(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Name != nil {
		account.Name = strings.TrimSpace(*update.Name)
	}
	if password := utils.Value(update.Password); password != "" {
		if err := users.ValidatePassword(password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := users.HashPassword(password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		account.PasswordHash = hash
	}
	if err := s.accounts.Upsert(account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully")
}

func (s *Server) handleUserDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User Dashboard",
		"data": map[string]any{
			"user_id":         claims.Subject,
			"user_email":      claims.Email,
			"user_role":       claims.Role,
			"welcome_message": "Welcome to your personal dashboard!",
		},
	})
}
