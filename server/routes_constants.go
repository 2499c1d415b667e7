package server

// Route path constants
const (
	// Parent sign-in API
	RouteAPIParentLogin = "/api/parent/login"
	RouteAPIParentMe    = "/api/parent/me"
	RouteAPIParentPIN   = "/api/parent/pin"

	// Membership bridge
	RouteAPIBridgeLogin = "/api/bridge/login"

	// Server-rendered parent views
	RouteParentHome   = "/parent"
	RouteSignIn       = "/sign-in"
	RouteParentLogout = "/auth/parent/logout"

	RouteHealth = "/healthz"
)
