package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/group-parent-auth/session"
)

const (
	msgMissingFields    = "Missing fields"
	msgInvalidNameOrPIN = "Invalid name or PIN"
	msgLoginFailed      = "Login failed"
	msgMethodNotAllowed = "Method not allowed"
	msgUnauthorized     = "Unauthorized"
	msgInvalidPIN       = "PIN must be 4 to 8 digits"
	msgInternal         = "Internal server error"

	maxBodyBytes = 1 << 16
)

// Bridge cookie names
const (
	cookieIDToken        = "id_token"
	cookieAccessToken    = "access_token"
	cookieBridgeUsername = "bridge_username"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSONError writes {"error": message}
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSONError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	return false
}

func isSecure(r *http.Request) bool {
	return getScheme(r) == "https"
}

func (s *Server) sessionCache(w http.ResponseWriter, r *http.Request) (*session.Cache, error) {
	return session.NewCache(session.NewCookieStorage(w, r, isSecure(r)))
}

func setBridgeCookie(w http.ResponseWriter, r *http.Request, name, value string, httpOnly bool, expiry time.Time) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
	if !expiry.IsZero() {
		cookie.Expires = expiry
	}
	http.SetCookie(w, cookie)
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func isFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
