package apiclient

// API endpoint paths, relative to the configured base address.
const (
	// Auth
	EndpointRegister       = "/api/auth/register"
	EndpointLogin          = "/api/auth/login"
	EndpointLogout         = "/api/auth/logout"
	EndpointRefresh        = "/api/auth/refresh"
	EndpointForgotPassword = "/api/auth/forgot-password"
	EndpointResetPassword  = "/api/auth/reset-password"

	// User
	EndpointUserMe        = "/api/user/me"
	EndpointUserProfile   = "/api/user/profile"
	EndpointUserDashboard = "/api/user/dashboard"

	// Admin
	EndpointAdminUsers     = "/api/admin/users"
	EndpointAdminDashboard = "/api/admin/dashboard"

	// Manager
	EndpointManagerReports   = "/api/manager/reports"
	EndpointManagerDashboard = "/api/manager/dashboard"

	// Utility
	EndpointHealth = "/api/health"
)
