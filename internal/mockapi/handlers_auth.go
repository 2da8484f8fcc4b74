package mockapi

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-shell/users"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
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

	account, err := s.createAccount(req.Email, req.Name, req.Password, users.RoleUser)
	if err != nil {
		s.logger.Error().Err(err).Msg("register: create account")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	accessToken, _, err := s.issueAccessToken(account.User)
	if err != nil {
		s.logger.Error().Err(err).Msg("register: issue token")
		writeError(w, http.StatusInternalServerError, "Failed to create token")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "User registered successfully",
		"user":         toWire(account.User),
		"accessToken":  accessToken,
		"refreshToken": s.issueRefreshToken(account.ID),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	account, err := s.accounts.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil || !users.CheckPasswordHash(req.Password, account.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, ttl, err := s.issueAccessToken(account.User)
	if err != nil {
		s.logger.Error().Err(err).Msg("login: issue token")
		writeError(w, http.StatusInternalServerError, "Failed to create token")
		return
	}
	s.logger.Debug().Str("user_id", account.ID).Msg("login")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Login successful",
		"token":         accessToken,
		"refresh_token": s.issueRefreshToken(account.ID),
		"expiresIn":     int(ttl.Seconds()),
		"user":          toWire(account.User),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}
	if s.failRefresh.Load() {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	userID, ok := s.rotateRefreshToken(req.RefreshToken)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	account, err := s.accounts.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "User not found")
		return
	}
	accessToken, _, err := s.issueAccessToken(account.User)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate new token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Token refreshed successfully",
		"accessToken":   accessToken,
		"refresh_token": s.issueRefreshToken(account.ID),
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}
	account, err := s.accounts.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		// unknown addresses get the same answer, without a token
		writeMessage(w, http.StatusOK, "If the email exists, a password reset link has been sent")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Password reset token generated",
		"reset_token": s.issueResetToken(account.ID),
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil || req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Reset token and new password are required")
		return
	}
	if err := users.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, ok := s.consumeResetToken(req.Token)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	account, err := s.accounts.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err := s.setPassword(account, req.Password); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}
	s.revokeUserTokens(userID)
	writeMessage(w, http.StatusOK, "Password reset successfully")
}

func (s *Server) createAccount(email, name, password string, role users.RoleType) (*users.Account, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	account := &users.Account{
		User:         users.User{Email: email, Name: strings.TrimSpace(name), Role: role},
		PasswordHash: hash,
	}
	if err := s.accounts.Upsert(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Server) setPassword(account *users.Account, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	return s.accounts.Upsert(account)
}
