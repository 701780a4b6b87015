package leasing

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
)

// Session is one lease origination in progress. It aggregates the form
// state, the staged people, the attached documents, and the submission
// state machine. Nothing in a session touches the platform until
// Submit runs.
type Session struct {
	ID         uuid.UUID
	Form       *leasing.OriginationForm
	People     *leasing.PersonStagingStore
	Files      *leasing.FileSet
	Submission *leasing.SubmissionState
	CreatedAt  time.Time
	UpdatedAt  time.Time

	mu sync.Mutex
}

// NewSession creates a fresh origination session
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New(),
		Form:       leasing.NewOriginationForm(),
		People:     leasing.NewPersonStagingStore(),
		Files:      leasing.NewFileSet(),
		Submission: leasing.NewSubmissionState(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithLock runs fn while holding the session lock. Handlers run
// concurrently; all session mutation goes through here.
func (s *Session) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn()
	s.UpdatedAt = time.Now()
	return err
}

// SessionRegistry holds the active origination sessions in memory.
// Sessions are short-lived working state, not durable data; an expired
// or lost session costs the user re-entry, never a duplicate lease.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
}

// NewSessionRegistry creates a registry whose sessions expire after ttl
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session
func (r *SessionRegistry) Create() *Session {
	session := NewSession()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.sessions[session.ID] = session
	return session
}

// Get returns the session by ID
func (r *SessionRegistry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok || r.expired(session) {
		return nil, shared.NewDomainError("SESSION_NOT_FOUND", "Origination session not found or expired")
	}
	return session, nil
}

// Remove drops a session
func (r *SessionRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of live sessions
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return len(r.sessions)
}

func (r *SessionRegistry) expired(s *Session) bool {
	return time.Since(s.UpdatedAt) > r.ttl
}

// prune drops expired sessions; callers hold the write lock
func (r *SessionRegistry) prune() {
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
		}
	}
}
