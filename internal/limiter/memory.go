package limiter

import (
	"context"
	"sync"
	"time"
)

type attempt struct {
	failures     int
	windowStart  time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter for single-instance deployments.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu       sync.Mutex
	attempts map[string]*attempt
}

// NewMemory constructs an in-process limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{policy: p, now: time.Now, attempts: make(map[string]*attempt)}
}

func memKey(username string, client []byte) string {
	return username + "\x00" + string(client)
}

// Allow reports whether the pair is currently unblocked.
func (m *Memory) Allow(_ context.Context, username string, client []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attempts[memKey(username, client)]
	if !ok {
		return true, 0, nil
	}
	now := m.now()
	if a.blockedUntil.After(now) {
		return false, a.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success forgets the pair.
func (m *Memory) Success(_ context.Context, username string, client []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, memKey(username, client))
	return nil
}

// Failure counts a failure within the window and blocks at the threshold.
func (m *Memory) Failure(_ context.Context, username string, client []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := memKey(username, client)
	a, ok := m.attempts[k]
	if !ok || now.Sub(a.windowStart) > m.policy.Window {
		a = &attempt{windowStart: now}
		m.attempts[k] = a
	}
	a.failures++
	if a.failures >= m.policy.MaxFails {
		a.blockedUntil = now.Add(m.policy.BlockFor)
		a.failures = 0
		a.windowStart = now
		return true, m.policy.BlockFor, nil
	}
	return false, 0, nil
}
