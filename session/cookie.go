package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	CookieName   = "parent_session"
	cookieMaxAge = 4 * time.Hour
)

// CookieStorage stores the session in a cookie for the duration of one
// HTTP request. Saves are written to the response and visible to later
// loads on the same request.
type CookieStorage struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	pending *Persisted
	cleared bool
}

var _ Storage = (*CookieStorage)(nil)

func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{w: w, r: r, secure: secure}
}

func (c *CookieStorage) Load() (*Persisted, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleared {
		return nil, nil
	}
	if c.pending != nil {
		cp := *c.pending
		return &cp, nil
	}

	cookie, err := c.r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[CookieStorage.Load] request.Cookie")
	}

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, errors.Wrap(err, "[CookieStorage.Load] base64 decode")
	}
	p := &Persisted{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "[CookieStorage.Load] json.Unmarshal")
	}
	return p, nil
}

func (c *CookieStorage) Save(p *Persisted) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "[CookieStorage.Save] json.Marshal")
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	cp := *p
	c.pending = &cp
	c.cleared = false
	return nil
}

func (c *CookieStorage) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	http.SetCookie(c.w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.pending = nil
	c.cleared = true
	return nil
}
