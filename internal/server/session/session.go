// Package session tracks per-login authentication state and owns the live
// derived key. Sessions exist only in process memory: the key is never
// serialized anywhere, and it is zeroed when the session is destroyed.
package session

import (
	"sync"
	"time"

	"minventory/internal/common"
	"minventory/internal/cryptox"

	"github.com/google/uuid"
)

// Phase names reported by Session.Phase.
const (
	PhaseTwoFactorPending   = "two_factor_pending"
	PhaseFullyAuthenticated = "fully_authenticated"
)

// Session is the state of one authenticated login. The privacy flag always
// starts locked on a fresh login regardless of prior history.
type Session struct {
	mu sync.Mutex

	id        string
	userID    string
	key       []byte
	expiresAt time.Time

	twoFactorRequired  bool
	twoFactorSatisfied bool
	privacyUnlocked    bool
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

// Key returns the session's derived master key. The session retains
// ownership; callers must not hold the slice past the request and must not
// store it.
func (s *Session) Key() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// FullyAuthenticated reports whether the two-factor fence has been passed
// (trivially true for accounts without two-factor).
func (s *Session) FullyAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.twoFactorRequired || s.twoFactorSatisfied
}

func (s *Session) Phase() string {
	if s.FullyAuthenticated() {
		return PhaseFullyAuthenticated
	}
	return PhaseTwoFactorPending
}

// SatisfyTwoFactor marks the second factor as verified for this session.
func (s *Session) SatisfyTwoFactor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.twoFactorSatisfied = true
}

// PrivacyUnlocked reports whether privacy-gated content is currently visible.
func (s *Session) PrivacyUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privacyUnlocked
}

// UnlockPrivacy opens the privacy gate. The key is not re-derived: the gate
// is orthogonal to encryption.
func (s *Session) UnlockPrivacy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacyUnlocked = true
}

// LockPrivacy unconditionally closes the privacy gate.
func (s *Session) LockPrivacy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacyUnlocked = false
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.expiresAt)
}

// destroy zeroes the key. Callers must already have removed the session from
// the manager.
func (s *Session) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cryptox.Zero(s.key)
	s.key = nil
}

// Manager is the in-memory session store. Sessions of different users are
// independent; the manager lock only guards the map, never a key derivation.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session owning key. twoFactorRequired comes from
// the account's two-factor flag at login time.
func (m *Manager) Create(userID string, key []byte, twoFactorRequired bool) *Session {
	s := &Session{
		id:                uuid.NewString(),
		userID:            userID,
		key:               key,
		expiresAt:         time.Now().Add(m.ttl),
		twoFactorRequired: twoFactorRequired,
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the live session with the given id. Expired sessions are
// destroyed on sight.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, common.ErrSessionExpired
	}
	if s.expired(time.Now()) {
		m.Destroy(id)
		return nil, common.ErrSessionExpired
	}
	return s, nil
}

// Destroy removes the session and zeroes its key. Safe to call twice.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		s.destroy()
	}
}

// PurgeExpired drops every expired session. Run periodically so abandoned
// keys do not linger in memory until the next Get.
func (m *Manager) PurgeExpired() int {
	now := time.Now()

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.expired(now) {
			delete(m.sessions, id)
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.destroy()
	}
	return len(stale)
}
