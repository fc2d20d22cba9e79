package reservation

import (
	"sync"
	"time"
)

type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeBooked   Outcome = "booked"
	OutcomeWaitlist Outcome = "waitlisted"
)

// Session is the mutable state of one run. Only the poller writes to it; the
// mutex exists so the status page can read a consistent snapshot.
type Session struct {
	mu        sync.Mutex
	outcome   Outcome
	refreshes int
	startedAt time.Time
	bookedAt  time.Time
}

func NewSession(now time.Time) *Session {
	return &Session{startedAt: now}
}

// MarkBooked records a successful reservation. Only the first call wins; later
// calls return false and leave the session unchanged.
func (s *Session) MarkBooked(o Outcome, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != OutcomeNone || o == OutcomeNone {
		return false
	}
	s.outcome = o
	s.bookedAt = now
	return true
}

func (s *Session) Booked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome != OutcomeNone
}

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Refreshed increments the refresh counter and returns the new value.
func (s *Session) Refreshed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.refreshes
}

func (s *Session) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

type Snapshot struct {
	Booked    bool      `json:"booked"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Refreshes int       `json:"refreshes"`
	StartedAt time.Time `json:"started_at"`
	BookedAt  time.Time `json:"booked_at,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Booked:    s.outcome != OutcomeNone,
		Outcome:   s.outcome,
		Refreshes: s.refreshes,
		StartedAt: s.startedAt,
		BookedAt:  s.bookedAt,
	}
}
