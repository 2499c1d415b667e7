package attempts

import (
	"context"
	"sync"
	"time"
)

// Policy bounds failed sign-in attempts per key inside a rolling window.
// MaxFailures of zero disables limiting entirely.
type Policy struct {
	MaxFailures int
	Window      time.Duration
}

func (p Policy) Enabled() bool {
	return p.MaxFailures > 0 && p.Window > 0
}

// Limiter tracks failed sign-in attempts. Implementations never touch the
// stored credential; a blocked key simply stops being checked until the
// window lapses or Reset is called.
type Limiter interface {
	Allowed(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Key builds the limiter key for an identifier within a group.
func Key(groupID, identifier string) string {
	return "login_failures:" + groupID + ":" + identifier
}

// NoLimit never blocks.
type NoLimit struct{}

var _ Limiter = NoLimit{}

func (NoLimit) Allowed(context.Context, string) (bool, error) { return true, nil }
func (NoLimit) RecordFailure(context.Context, string) error   { return nil }
func (NoLimit) Reset(context.Context, string) error           { return nil }

type window struct {
	failures int
	start    time.Time
}

// Memory is an in-process Limiter. Lapsed windows are swept at most once per
// window length so the map only holds keys with recent failures.
type Memory struct {
	policy    Policy
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
	nowFunc   func() time.Time
}

var _ Limiter = (*Memory)(nil)

type MemoryOption func(*Memory)

func WithNowFunc(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.nowFunc = now
	}
}

func NewMemory(policy Policy, options ...MemoryOption) *Memory {
	m := &Memory{
		policy:  policy,
		windows: make(map[string]*window),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	m.lastSweep = m.nowFunc()
	return m
}

func (m *Memory) Allowed(_ context.Context, key string) (bool, error) {
	if !m.policy.Enabled() {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.current(key)
	return w == nil || w.failures < m.policy.MaxFailures, nil
}

func (m *Memory) RecordFailure(_ context.Context, key string) error {
	if !m.policy.Enabled() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	w := m.current(key)
	if w == nil {
		w = &window{start: m.nowFunc()}
		m.windows[key] = w
	}
	w.failures++
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, key)
	return nil
}

// current returns the live window for key, dropping it once lapsed. Caller holds mu.
func (m *Memory) current(key string) *window {
	w, ok := m.windows[key]
	if !ok {
		return nil
	}
	if m.nowFunc().Sub(w.start) >= m.policy.Window {
		delete(m.windows, key)
		return nil
	}
	return w
}

// sweep drops every lapsed window. Caller holds mu.
func (m *Memory) sweep() {
	now := m.nowFunc()
	if now.Sub(m.lastSweep) < m.policy.Window {
		return
	}
	for key, w := range m.windows {
		if now.Sub(w.start) >= m.policy.Window {
			delete(m.windows, key)
		}
	}
	m.lastSweep = now
}
