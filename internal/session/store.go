package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"betsafe-ai/internal/models"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrNoCredential     = errors.New("session has no credential")
	ErrDispatchInFlight = errors.New("a query is already being processed for this session")
)

type session struct {
	credential  string
	dispatching bool
	lastSeen    time.Time
}

func (s *session) state() models.SessionState {
	switch {
	case s.credential == "":
		return models.StateAwaitingCredential
	case s.dispatching:
		return models.StateDispatching
	default:
		return models.StateReady
	}
}

// Store keeps session credentials in process memory only.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	ttl      time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[uuid.UUID]*session),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()

	return s
}

func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) Create() uuid.UUID {
	id := uuid.New()

	s.mu.Lock()
	s.sessions[id] = &session{lastSeen: s.now()}
	s.mu.Unlock()

	return id
}

// Touch reports whether the session exists and refreshes its idle timer.
func (s *Store) Touch(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if ok {
		sess.lastSeen = s.now()
	}
	return ok
}

func (s *Store) State(id uuid.UUID) (models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return "", ErrNotFound
	}
	return sess.state(), nil
}

// SetCredential stores the key; an empty key clears it.
func (s *Store) SetCredential(id uuid.UUID, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return ErrNotFound
	}
	sess.credential = credential
	sess.lastSeen = s.now()
	return nil
}

func (s *Store) ClearCredential(id uuid.UUID) error {
	return s.SetCredential(id, "")
}

// BeginDispatch moves Ready -> Dispatching and hands back the credential.
// The caller must call EndDispatch when the call returns.
func (s *Store) BeginDispatch(id uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return "", ErrNotFound
	}

	switch sess.state() {
	case models.StateAwaitingCredential:
		return "", ErrNoCredential
	case models.StateDispatching:
		return "", ErrDispatchInFlight
	}

	sess.dispatching = true
	sess.lastSeen = s.now()
	return sess.credential, nil
}

// EndDispatch moves Dispatching -> Ready. It is a no-op for unknown sessions.
func (s *Store) EndDispatch(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.dispatching = false
		sess.lastSeen = s.now()
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// live must be called with mu held.
func (s *Store) live(id uuid.UUID) (*session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}

func (s *Store) expired(sess *session) bool {
	return !sess.dispatching && s.now().Sub(sess.lastSeen) > s.ttl
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
		}
	}
}
