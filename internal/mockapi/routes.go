package mockapi

import (
	"net/http"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/users"
)

func (s *Server) initRoutes() {
	s.handler = ChainMiddleware(s.router, s.recoverMiddleware, s.loggingMiddleware, s.corsMiddleware)

	// Auth
	s.router.HandleFunc(apiclient.EndpointRegister, s.handleRegister).Methods(http.MethodPost)
	s.router.HandleFunc(apiclient.EndpointLogin, s.handleLogin).Methods(http.MethodPost)
	s.router.HandleFunc(apiclient.EndpointLogout, s.handleLogout).Methods(http.MethodPost)
	s.router.HandleFunc(apiclient.EndpointRefresh, s.handleRefresh).Methods(http.MethodPost)
	s.router.HandleFunc(apiclient.EndpointForgotPassword, s.handleForgotPassword).Methods(http.MethodPost)
	s.router.HandleFunc(apiclient.EndpointResetPassword, s.handleResetPassword).Methods(http.MethodPost)

	// User
	user := s.router.NewRoute().Subrouter()
	user.Use(s.requireAuth)
	user.HandleFunc(apiclient.EndpointUserMe, s.handleCurrentUser).Methods(http.MethodGet)
	user.HandleFunc(apiclient.EndpointUserProfile, s.handleGetProfile).Methods(http.MethodGet)
	user.HandleFunc(apiclient.EndpointUserProfile, s.handleUpdateProfile).Methods(http.MethodPut)
	user.HandleFunc(apiclient.EndpointUserDashboard, s.handleUserDashboard).Methods(http.MethodGet)

	// Admin
	admin := s.router.NewRoute().Subrouter()
	admin.Use(s.requireAuth, s.requireRole(users.RoleAdmin))
	admin.HandleFunc(apiclient.EndpointAdminUsers, s.handleListUsers).Methods(http.MethodGet)
	admin.HandleFunc(apiclient.EndpointAdminUsers, s.handleCreateUser).Methods(http.MethodPost)
	admin.HandleFunc(apiclient.EndpointAdminUsers+"/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	admin.HandleFunc(apiclient.EndpointAdminUsers+"/{id}", s.handleDeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc(apiclient.EndpointAdminDashboard, s.handleAdminDashboard).Methods(http.MethodGet)

	// Manager
	manager := s.router.NewRoute().Subrouter()
	manager.Use(s.requireAuth, s.requireRole(users.RoleManager, users.RoleAdmin))
	manager.HandleFunc(apiclient.EndpointManagerReports, s.handleReports).Methods(http.MethodGet)
	manager.HandleFunc(apiclient.EndpointManagerDashboard, s.handleManagerDashboard).Methods(http.MethodGet)

	// Utility
	s.router.HandleFunc(apiclient.EndpointHealth, s.handleHealth).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
