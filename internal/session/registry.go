package session

import (
	"log"
	"sync"
	"time"

	"github.com/example/lernbot/pkg/models"
)

// Notifier delivers session-lifecycle messages to the learner. Implemented
// by the transport layer.
type Notifier interface {
	// SessionInterrupted reports the partial results of a session that was
	// forcibly retired by a newer one.
	SessionInterrupted(userID int64, summary Summary)
}

// Registry holds at most one active engine per learner. All map mutations
// happen under one mutex so concurrent starts for the same learner cannot
// both install an engine.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Engine
	recorder Recorder
	notifier Notifier
}

// NewRegistry creates an empty registry
func NewRegistry(recorder Recorder, notifier Notifier) *Registry {
	return &Registry{
		sessions: make(map[int64]*Engine),
		recorder: recorder,
		notifier: notifier,
	}
}

// Start installs a new engine for the learner. An existing session is
// retired first: its partial summary is emitted to the notifier exactly
// once, then it is discarded.
func (r *Registry) Start(userID int64, items []models.StudyItem, kind string) *Engine {
	r.mu.Lock()
	existing := r.sessions[userID]
	engine := NewEngine(userID, items, kind, r.recorder)
	r.sessions[userID] = engine
	r.mu.Unlock()

	if existing != nil {
		summary := existing.Summary()
		log.Printf("interrupted %s session for user %d (%d/%d answered)",
			existing.Kind, userID, summary.Answered, summary.Total)
		if r.notifier != nil {
			r.notifier.SessionInterrupted(userID, summary)
		}
	}
	return engine
}

// Get returns the learner's active engine, or nil
func (r *Registry) Get(userID int64) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// Remove drops the learner's engine if it is the given one. Used after a
// session finishes; a concurrent Start already replaced it otherwise.
func (r *Registry) Remove(userID int64, engine *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[userID] == engine {
		delete(r.sessions, userID)
	}
}

// Sweep removes sessions older than maxAge regardless of state and returns
// how many were dropped. This is the recovery path for abandoned sessions.
func (r *Registry) Sweep(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for userID, engine := range r.sessions {
		if engine.StartedAt().Before(cutoff) {
			delete(r.sessions, userID)
			removed++
			log.Printf("swept expired session for user %d", userID)
		}
	}
	return removed
}

// Count returns the number of active sessions
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
