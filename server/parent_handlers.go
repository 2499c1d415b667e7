package server

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/group-parent-auth/auth"
	"github.com/jrsteele09/group-parent-auth/parents"
	"github.com/jrsteele09/group-parent-auth/session"
)

type parentLoginRequest struct {
	Identifier string `json:"identifier"`
	EnteredPIN string `json:"enteredPin"`
	GroupID    string `json:"groupId"`
}

type parentLoginResponse struct {
	Token  string          `json:"token"`
	Parent parents.Profile `json:"parent"`
}

type changePINRequest struct {
	CurrentPIN string `json:"currentPin"`
	NewPIN     string `json:"newPin"`
}

// ParentLoginHandler signs a parent in with name or phone plus PIN.
func (s *Server) ParentLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		var req parentLoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		res, err := s.auth.Login(r.Context(), auth.LoginRequest{
			Identifier: req.Identifier,
			EnteredPIN: req.EnteredPIN,
			GroupID:    req.GroupID,
		})
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeJSONError(w, http.StatusBadRequest, msgMissingFields)
			return
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSONError(w, http.StatusUnauthorized, msgInvalidNameOrPIN)
			return
		case err != nil:
			s.log.Error().Err(err).Msg("parent login failed")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		// The cookie session only backs server-rendered views; API clients
		// use the returned token.
		if cache, err := s.sessionCache(w, r); err != nil {
			s.log.Warn().Err(err).Msg("could not open parent session cookie")
		} else if err := cache.Login(res.Token, res.Parent, res.GroupID); err != nil {
			s.log.Warn().Err(err).Msg("could not write parent session cookie")
		}

		writeJSON(w, http.StatusOK, parentLoginResponse{Token: res.Token, Parent: res.Parent})
	}
}

func (s *Server) ParentProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		claims, ok := parentClaims(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		profile, err := s.auth.Profile(r.Context(), claims.GroupID, claims.Subject)
		if errors.Is(err, parents.ErrNotFound) {
			writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		if err != nil {
			s.log.Error().Err(err).Msg("parent profile lookup failed")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"parent":    profile,
			"groupId":   claims.GroupID,
			"expiresAt": claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		})
	}
}

func (s *Server) ParentChangePINHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		claims, ok := parentClaims(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		var req changePINRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		err := s.auth.ChangePIN(r.Context(), claims.GroupID, claims.Subject, req.CurrentPIN, req.NewPIN)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, auth.ErrMissingFields):
			writeJSONError(w, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, auth.ErrInvalidPIN):
			writeJSONError(w, http.StatusBadRequest, msgInvalidPIN)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSONError(w, http.StatusUnauthorized, msgInvalidNameOrPIN)
		default:
			s.log.Error().Err(err).Msg("parent pin change failed")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
		}
	}
}

// ParentLogoutHandler clears the cookie session. Browser form posts are
// sent back to the sign-in page.
func (s *Server) ParentLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cache, err := s.sessionCache(w, r)
		if err == nil {
			err = cache.Logout()
		}
		if err != nil {
			s.log.Error().Err(err).Msg("parent logout failed")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		if isFormPost(r) {
			http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) SignInPageHandler(pages pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := url.URL{Path: RouteParentHome, RawQuery: r.URL.RawQuery}
		s.renderPage(w, pages, pageSignIn, map[string]any{
			"AppName": s.config.GetAppName(),
			"GroupID": r.URL.Query().Get("group"),
			"Next":    next.String(),
		})
	}
}

func (s *Server) ParentHomeHandler(pages pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := parentSession(r.Context())
		if !ok {
			redirect, _ := session.Guard(session.Unauthenticated{Reason: session.ReasonNoSession}, r.URL, RouteSignIn)
			http.Redirect(w, r, redirect, http.StatusSeeOther)
			return
		}
		s.renderPage(w, pages, pageParentHome, map[string]any{
			"AppName":   s.config.GetAppName(),
			"Parent":    state.Parent,
			"GroupID":   state.GroupID,
			"ExpiresAt": state.ExpiresAt,
		})
	}
}

func (s *Server) renderPage(w http.ResponseWriter, pages pageSet, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pages[name].Execute(w, data); err != nil {
		s.log.Error().Err(err).Str("page", name).Msg("failed to render page")
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
