// Package lock provides the single-flight guard used by the connection
// workflow. A Guard hands out at most one live Session; the session is the
// token every step of a run must present.
package lock

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard admits one session at a time. The zero value is not usable; call NewGuard.
type Guard struct {
	mu      sync.Mutex
	current *Session
	now     func() time.Time
}

// Session is an acquired hold on a Guard.
type Session struct {
	Info  *SessionInfo
	guard *Guard
	once  sync.Once
}

// NewGuard creates an unheld guard.
func NewGuard() *Guard {
	return &Guard{now: time.Now}
}

// SetClock overrides the time source used to stamp sessions.
func (g *Guard) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// TryAcquire takes the guard for target without waiting.
// It returns ErrHeld if another session is live, leaving the guard untouched.
func (g *Guard) TryAcquire(target string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != nil {
		return nil, ErrHeld
	}

	s := &Session{
		Info: &SessionInfo{
			ID:      uuid.NewString(),
			Target:  target,
			Started: g.now(),
			PID:     os.Getpid(),
		},
		guard: g,
	}
	g.current = s
	return s, nil
}

// Owns reports whether s is the guard's live session.
func (g *Guard) Owns(s *Session) bool {
	if s == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current == s
}

// Holder returns info about the live session, or nil when the guard is free.
func (g *Guard) Holder() *SessionInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	info := *g.current.Info
	return &info
}

// Held reports whether a session is live.
func (g *Guard) Held() bool {
	return g.Holder() != nil
}

// Check returns ErrNotOwner unless s is still the guard's live session.
func (s *Session) Check() error {
	if s == nil || s.guard == nil || !s.guard.Owns(s) {
		return ErrNotOwner
	}
	return nil
}

// Release frees the guard. Safe to call more than once and on a nil session.
func (s *Session) Release() {
	if s == nil || s.guard == nil {
		return
	}
	s.once.Do(func() {
		s.guard.mu.Lock()
		defer s.guard.mu.Unlock()
		if s.guard.current == s {
			s.guard.current = nil
		}
	})
}
