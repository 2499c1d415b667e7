package session

import (
	"sync"
	"time"

	"github.com/jrsteele09/group-parent-auth/parents"
	"github.com/jrsteele09/group-parent-auth/token"
	"github.com/pkg/errors"
)

// ErrIncomplete is returned when a login is recorded without a token,
// parent id or group id.
var ErrIncomplete = errors.New("session requires token, parent id and group id")

// Persisted is the stored form of a parent session.
type Persisted struct {
	Token   string          `json:"token"`
	Parent  parents.Profile `json:"parent"`
	GroupID string          `json:"groupId"`
}

func (p *Persisted) complete() bool {
	return p != nil && p.Token != "" && p.Parent.ID != "" && p.GroupID != ""
}

// State is either Unauthenticated or Authenticated.
type State interface {
	isState()
}

// Reasons reported by Unauthenticated.
const (
	ReasonNoSession  = "no session"
	ReasonIncomplete = "incomplete session"
	ReasonUnreadable = "unreadable token"
	ReasonExpired    = "expired"
)

type Unauthenticated struct {
	Reason string
}

type Authenticated struct {
	Token     string
	Parent    parents.Profile
	GroupID   string
	ExpiresAt time.Time
}

func (Unauthenticated) isState() {}
func (Authenticated) isState()   {}

// Storage persists a single session.
// Load returns nil, nil when nothing has been stored.
type Storage interface {
	Load() (*Persisted, error)
	Save(*Persisted) error
	Clear() error
}

// Cache holds the current parent session in memory, backed by a Storage.
type Cache struct {
	mu      sync.RWMutex
	storage Storage
	current *Persisted
}

// NewCache rehydrates the session from storage. An unreadable stored
// session is cleared rather than failing start-up.
func NewCache(storage Storage) (*Cache, error) {
	if storage == nil {
		return nil, errors.New("[NewCache] storage is required")
	}
	c := &Cache{storage: storage}

	stored, err := storage.Load()
	if err != nil {
		if clearErr := storage.Clear(); clearErr != nil {
			return nil, errors.Wrap(clearErr, "[NewCache] storage.Clear")
		}
		return c, nil
	}
	c.current = stored
	return c, nil
}

// Login records a new session, replacing any previous one.
func (c *Cache) Login(tokenString string, profile parents.Profile, groupID string) error {
	p := &Persisted{Token: tokenString, Parent: profile, GroupID: groupID}
	if !p.complete() {
		return ErrIncomplete
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.storage.Save(p); err != nil {
		return errors.Wrap(err, "[Cache.Login] storage.Save")
	}
	c.current = p
	return nil
}

func (c *Cache) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	if err := c.storage.Clear(); err != nil {
		return errors.Wrap(err, "[Cache.Logout] storage.Clear")
	}
	return nil
}

// Current reports the session state at now. The token expiry is read
// locally without verifying the signature; the backend still verifies
// every request that carries the token.
func (c *Cache) Current(now time.Time) State {
	c.mu.RLock()
	p := c.current
	c.mu.RUnlock()

	if p == nil {
		return Unauthenticated{Reason: ReasonNoSession}
	}
	if !p.complete() {
		return Unauthenticated{Reason: ReasonIncomplete}
	}

	claims, err := token.ParseUnverified(p.Token)
	if err != nil || claims.ExpiresAt == nil {
		return Unauthenticated{Reason: ReasonUnreadable}
	}
	expiresAt := claims.ExpiresAt.Time
	if !now.Before(expiresAt) {
		return Unauthenticated{Reason: ReasonExpired}
	}

	return Authenticated{
		Token:     p.Token,
		Parent:    p.Parent,
		GroupID:   p.GroupID,
		ExpiresAt: expiresAt,
	}
}

// Token returns the stored token for attaching to backend calls, or an
// empty string when signed out.
func (c *Cache) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.Token
}
