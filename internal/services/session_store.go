package services

import (
	"context"
	"member-locator-service/internal/platform/obs"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	locator  *Locator
	lastSeen time.Time
}

// SessionStore keeps one Locator per connected display, keyed by a random id.
// Removing a session closes its Locator.
type SessionStore struct {
	ttl time.Duration
	log logrus.FieldLogger
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionStore(ttl time.Duration, log logrus.FieldLogger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionStore{
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Add registers l and returns its session id.
func (s *SessionStore) Add(l *Locator) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &session{locator: l, lastSeen: s.now()}
	s.mu.Unlock()

	obs.ActiveSessions.Inc()
	return id
}

// Get returns the Locator for id and marks the session as used.
func (s *SessionStore) Get(id string) (*Locator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.locator, true
}

// Remove closes and forgets the session. It reports whether id existed.
func (s *SessionStore) Remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.locator.Close()
	obs.ActiveSessions.Dec()
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many went.
func (s *SessionStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.locator.Close()
		obs.ActiveSessions.Dec()
	}
	if len(expired) > 0 {
		s.log.WithField("count", len(expired)).Info("expired idle sessions")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// CloseAll tears down every session.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.locator.Close()
		obs.ActiveSessions.Dec()
	}
}
