package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
)

// PendingForce is a time-off request the backend refused with 409. It is
// re-sent unchanged with force set once the admin confirms.
type PendingForce struct {
	BarberID  int
	Request   backend.TimeOffRequest
	Conflicts backend.TimeOffConflicts
	Detail    string
}

type Admin struct {
	Password string
	Pending  *PendingForce
}

// Session is one visitor. Fields other than ID and Wizard are guarded by
// the session lock.
type Session struct {
	ID     string
	Wizard *booking.Wizard

	mu       sync.Mutex
	lastSeen time.Time
	admin    Admin
	flash    string
}

func (s *Session) Admin() Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

func (s *Session) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin.Password != ""
}

func (s *Session) SetAdminPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = Admin{Password: password}
}

func (s *Session) SetPendingForce(p *PendingForce) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin.Pending = p
}

// Logout forgets the admin credential.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = Admin{}
}

// Flash stores a one-shot notice for the next page.
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = msg
}

// TakeFlash returns and clears the notice.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Store keeps sessions in memory and evicts idle ones.
type Store struct {
	mu        sync.RWMutex
	m         map[string]*Session
	ttl       time.Duration
	now       func() time.Time
	newWizard func() *booking.Wizard
	onChange  func(active int)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithGauge is told the number of live sessions after every change.
func WithGauge(fn func(active int)) Option {
	return func(s *Store) { s.onChange = fn }
}

func NewStore(ttl time.Duration, newWizard func() *booking.Wizard, opts ...Option) *Store {
	s := &Store{
		m:         make(map[string]*Session),
		ttl:       ttl,
		now:       time.Now,
		newWizard: newWizard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a live session and marks it as used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := s.now()
	if sess.idleSince(now) > s.ttl {
		s.delete(id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Create starts a new session with a fresh wizard.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		Wizard:   s.newWizard(),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.m[sess.ID] = sess
	n := len(s.m)
	s.mu.Unlock()
	s.changed(n)
	return sess
}

// GetOrCreate resolves id, creating a session when it is unknown or expired.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) delete(id string) {
	s.mu.Lock()
	delete(s.m, id)
	n := len(s.m)
	s.mu.Unlock()
	s.changed(n)
}

// Sweep drops idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	removed := 0
	for id, sess := range s.m {
		if sess.idleSince(now) > s.ttl {
			delete(s.m, id)
			removed++
		}
	}
	n := len(s.m)
	s.mu.Unlock()
	if removed > 0 {
		s.changed(n)
	}
	return removed
}

// Run sweeps every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) changed(n int) {
	if s.onChange != nil {
		s.onChange(n)
	}
}
