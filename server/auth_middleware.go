package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/group-parent-auth/session"
	"github.com/jrsteele09/group-parent-auth/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores verified parent token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeySession stores the authenticated cookie session
	ContextKeySession ContextKey = "session"
)

// RequireParentToken validates a bearer token issued by the parent login.
// Signature and expiry are checked on every request.
func (s *Server) RequireParentToken() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="parent"`)
				writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			claims, err := s.issuer.Verify(raw)
			if err != nil {
				s.log.Debug().Err(err).Msg("rejected parent bearer token")
				w.Header().Set("WWW-Authenticate", `Bearer realm="parent", error="invalid_token"`)
				writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func parentClaims(ctx context.Context) (*token.ParentClaims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.ParentClaims)
	return claims, ok
}

// RequireParentSession guards server-rendered parent views. Signed-out or
// expired sessions are sent to the sign-in page keeping the requested query.
// The cookie token is verified on every request and must name the same parent
// and group as the stored profile.
func (s *Server) RequireParentSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cache, err := s.sessionCache(w, r)
			if err != nil {
				s.log.Error().Err(err).Msg("failed to load parent session")
				http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
				return
			}

			state := cache.Current(s.nowFunc())
			redirect, ok := session.Guard(state, r.URL, RouteSignIn)
			if !ok {
				if unauth, isUnauth := state.(session.Unauthenticated); isUnauth && unauth.Reason == session.ReasonExpired {
					_ = cache.Logout()
				}
				http.Redirect(w, r, redirect, http.StatusSeeOther)
				return
			}

			authed := state.(session.Authenticated)
			claims, err := s.issuer.Verify(authed.Token)
			if err != nil || claims.Subject != authed.Parent.ID || claims.GroupID != authed.GroupID {
				s.log.Warn().Err(err).Str("parent_id", authed.Parent.ID).Msg("rejected parent session cookie")
				_ = cache.Logout()
				redirect, _ = session.Guard(session.Unauthenticated{Reason: session.ReasonUnreadable}, r.URL, RouteSignIn)
				http.Redirect(w, r, redirect, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, authed)
			next(w, r.WithContext(ctx))
		}
	}
}

func parentSession(ctx context.Context) (session.Authenticated, bool) {
	state, ok := ctx.Value(ContextKeySession).(session.Authenticated)
	return state, ok
}
