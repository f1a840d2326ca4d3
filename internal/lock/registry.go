package lock

import (
	"log"
	"sync"
	"time"
)

// DefaultTTL is how long a lock survives without an explicit release
const DefaultTTL = 5 * time.Minute

// Info describes a held lock
type Info struct {
	Operation  string
	AcquiredAt time.Time
}

// Registry is an in-process advisory lock per learner, used to serialize
// expensive operations (bulk word ingestion, exports) against session and
// review actions for the same learner. Locks expire after the TTL whether
// or not they are released; expired locks are invisible to every read.
type Registry struct {
	mu    sync.Mutex
	locks map[int64]Info
	ttl   time.Duration
}

// NewRegistry creates a registry with the given TTL; zero means DefaultTTL
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		locks: make(map[int64]Info),
		ttl:   ttl,
	}
}

// TryAcquire attempts to take the lock for a learner. It never blocks:
// false means a live lock is already held and the caller should tell the
// learner another operation is in progress.
func (r *Registry) TryAcquire(userID int64, operation string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.locks[userID]; ok && !r.expired(info) {
		log.Printf("user %d already locked for operation %q", userID, info.Operation)
		return false
	}

	r.locks[userID] = Info{Operation: operation, AcquiredAt: time.Now()}
	return true
}

// Release removes the learner's lock; false if none was held
func (r *Registry) Release(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.locks[userID]
	if !ok || r.expired(info) {
		delete(r.locks, userID)
		return false
	}
	delete(r.locks, userID)
	return true
}

// ForceRelease unconditionally removes the learner's lock. Administrative
// recovery only.
func (r *Registry) ForceRelease(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.locks[userID]; ok {
		log.Printf("force released lock for user %d, operation %q", userID, info.Operation)
		delete(r.locks, userID)
	}
}

// IsLocked reports whether the learner holds a live lock
func (r *Registry) IsLocked(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.locks[userID]
	return ok && !r.expired(info)
}

// GetInfo returns the live lock for a learner, or ok=false
func (r *Registry) GetInfo(userID int64) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.locks[userID]
	if !ok || r.expired(info) {
		return Info{}, false
	}
	return info, true
}

// Purge drops all expired locks and returns how many were removed. Run
// periodically so abandoned locks don't accumulate between reads.
func (r *Registry) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for userID, info := range r.locks {
		if r.expired(info) {
			delete(r.locks, userID)
			removed++
			log.Printf("purged expired lock for user %d, operation %q", userID, info.Operation)
		}
	}
	return removed
}

// Count returns the number of live locks
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, info := range r.locks {
		if !r.expired(info) {
			count++
		}
	}
	return count
}

func (r *Registry) expired(info Info) bool {
	return time.Since(info.AcquiredAt) > r.ttl
}
