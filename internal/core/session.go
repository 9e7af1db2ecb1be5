package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"curie-dashboard/pkg"
)

// Persona holds the literals that varied across the original dashboard
// components (assistant naming, target weight). One parameterized
// implementation replaces the duplicated variants.
type Persona struct {
	AssistantName  string
	PatientName    string
	TargetWeightKg float64
}

// SeedMessage renders the session-opening greeting for a snapshot.
func (p Persona) SeedMessage(snap pkg.TelemetrySnapshot) string {
	return seedMessage(p.PatientName, snap.Weight)
}

// Session owns the transcript of one chat conversation together with the
// telemetry snapshot it was grounded on. The transcript is append-only
// and insertion-ordered; the busy flag is the only concurrency guard and
// blocks a second send while a turn is in flight.
type Session struct {
	ID        string
	PatientID string
	Telemetry pkg.TelemetrySnapshot

	turnMu sync.Mutex // held for the duration of one turn

	mu       sync.Mutex
	messages []pkg.Message
}

// NewSession creates a session seeded with exactly one assistant
// greeting derived from the initial snapshot. The greeting is always the
// first transcript entry.
func NewSession(patientID string, snap pkg.TelemetrySnapshot, persona Persona) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Telemetry: snap,
	}
	s.Append(pkg.RoleAssistant, persona.SeedMessage(snap))
	return s
}

// Append adds a message with the current timestamp at the end of the
// transcript and returns it. Messages are never edited or removed.
func (s *Session) Append(role pkg.Role, content string) pkg.Message {
	m := pkg.Message{Role: role, Content: content, CreatedAt: time.Now()}
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return m
}

// Transcript returns a copy of the ordered message list. Callers cannot
// mutate the session's internal slice through it.
func (s *Session) Transcript() []pkg.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pkg.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// beginTurn marks the session busy. It reports false when another turn
// is already awaiting completion, in which case the send is a no-op.
func (s *Session) beginTurn() bool {
	return s.turnMu.TryLock()
}

// endTurn releases the busy guard.
func (s *Session) endTurn() {
	s.turnMu.Unlock()
}

// SessionStore is the in-memory registry of active sessions. Sessions
// expire after the configured TTL and are never persisted; a process
// restart discards all transcripts.
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore builds a store whose sessions expire after ttl and are
// purged at twice that interval.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache.New(ttl, 2*ttl)}
}

func (r *SessionStore) Save(s *Session) {
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
}

func (r *SessionStore) Get(id string) (*Session, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*Session), true
	}
	return nil, false
}

func (r *SessionStore) Delete(id string) {
	r.cache.Delete(id)
}
