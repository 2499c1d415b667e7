package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/group-parent-auth/bridge"
)

type bridgeLoginRequest struct {
	Region   string `json:"region"`
	MemberID string `json:"memberId"`
	Password string `json:"password"`
}

// BridgeLoginHandler signs a member in through the external membership
// provider and hands its tokens to the browser as cookies. No cookies are
// written unless the provider accepted the credentials.
func (s *Server) BridgeLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		var req bridgeLoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		res, err := s.bridge.Login(r.Context(), req.Region, req.MemberID, req.Password)
		switch {
		case errors.Is(err, bridge.ErrMissingFields):
			writeJSONError(w, http.StatusBadRequest, msgMissingFields)
			return
		case errors.Is(err, bridge.ErrLoginFailed):
			writeJSONError(w, http.StatusUnauthorized, msgLoginFailed)
			return
		case err != nil:
			s.log.Error().Err(err).Str("region", req.Region).Msg("bridge login error")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		setBridgeCookie(w, r, cookieIDToken, res.IDToken, true, res.Expiry)
		setBridgeCookie(w, r, cookieAccessToken, res.AccessToken, true, res.Expiry)
		setBridgeCookie(w, r, cookieBridgeUsername, res.Username, false, res.Expiry)

		http.Redirect(w, r, s.config.GetBridgeRedirect(), http.StatusFound)
	}
}
