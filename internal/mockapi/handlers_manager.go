package mockapi

import (
	"net/http"
	"time"
)

const recentUsersLimit = 5

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	byRole := map[string]int{}
	for role, n := range s.roleCounts() {
		byRole[role.String()] = n
	}
	reports := map[string]any{
		"users_by_role": byRole,
		"total_users":   s.accounts.Count(),
	}
	if period := r.URL.Query().Get("period"); period != "" {
		reports["period"] = period
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleManagerDashboard(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	recent := make([]string, 0, recentUsersLimit)
	for _, a := range accounts {
		if len(recent) == recentUsersLimit {
			break
		}
		recent = append(recent, a.Email)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Manager Dashboard",
		"data": map[string]any{
			"total_users":  len(accounts),
			"recent_users": recent,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": NowTimeFunc().UTC().Format(time.RFC3339),
	})
}
