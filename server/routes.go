package server

import "net/http"

func (s *Server) initRoutes() error {
	pages, err := parsePages()
	if err != nil {
		return err
	}

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Parent sign-in. Method checks happen in the handlers so CORS preflight
	// and the JSON 405 body behave the same on every API route.
	s.RegisterRouteHandler(RouteAPIParentLogin, ChainMiddleware(s.ParentLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(RouteAPIParentMe, ChainMiddleware(s.ParentProfileHandler(), s.APIMiddleware(s.RequireParentToken())...))
	s.RegisterRouteHandler(RouteAPIParentPIN, ChainMiddleware(s.ParentChangePINHandler(), s.APIMiddleware(s.RequireParentToken())...))

	if s.bridge != nil {
		s.RegisterRouteHandler(RouteAPIBridgeLogin, ChainMiddleware(s.BridgeLoginHandler(), s.APIMiddleware()...))
	}

	// Server-rendered parent views
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInPageHandler(pages), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteParentHome, ChainMiddleware(s.ParentHomeHandler(pages), s.HTMLMiddleWare(s.RequireParentSession())...))
	s.RegisterRouteHandler("POST "+RouteParentLogout, ChainMiddleware(s.ParentLogoutHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
	return nil
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	}
}
