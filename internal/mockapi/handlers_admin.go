package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-auth-shell/internal/utils"
	"github.com/jrsteele09/go-auth-shell/users"
)

// handleListUsers supports optional role filtering and page/limit paging.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	query := r.URL.Query()
	role := users.RoleType(query.Get("role"))
	out := make([]wireUser, 0, len(accounts))
	for _, a := range accounts {
		if role != "" && a.Role != role {
			continue
		}
		out = append(out, toWireWithRoleObject(a.User))
	}

	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		page, err := strconv.Atoi(query.Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		start := min((page-1)*limit, len(out))
		end := min(start+limit, len(out))
		out = out[start:end]
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

type userRequest struct {
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	Password string         `json:"password"`
	Role     users.RoleType `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if req.Role == "" {
		req.Role = users.RoleUser
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if err := users.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.accounts.GetByEmail(req.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	account, err := s.createAccount(req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    toWire(account.User),
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	var update users.Update
	if err := decodeBody(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if update.Email != nil && !strings.EqualFold(*update.Email, account.Email) {
		email := strings.TrimSpace(*update.Email)
		if other, err := s.accounts.GetByEmail(email); err == nil && other.ID != account.ID {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		account.Email = email
	}
	if update.Name != nil {
		account.Name = strings.TrimSpace(*update.Name)
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		account.Role = *update.Role
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
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	writeMessage(w, http.StatusOK, "User updated successfully")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.accounts.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.revokeUserTokens(id)
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	counts := s.roleCounts()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Admin Dashboard",
		"stats": map[string]any{
			"total_users":    s.accounts.Count(),
			"total_admins":   counts[users.RoleAdmin],
			"total_managers": counts[users.RoleManager],
		},
	})
}

func (s *Server) roleCounts() map[users.RoleType]int {
	counts := make(map[users.RoleType]int, len(users.AllRoles))
	accounts, err := s.accounts.List()
	if err != nil {
		return counts
	}
	for _, a := range accounts {
		counts[a.Role]++
	}
	return counts
}
