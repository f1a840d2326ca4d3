package lock

import (
	"sync"
	"testing"
	"time"
)

func TestTryAcquireBlocksSecondCaller(t *testing.T) {
	r := NewRegistry(time.Minute)

	if !r.TryAcquire(1, "add_words") {
		t.Fatal("first acquire should succeed")
	}
	if r.TryAcquire(1, "add_words") {
		t.Error("second acquire before TTL should fail")
	}
	if !r.TryAcquire(2, "add_words") {
		t.Error("acquire for a different user should succeed")
	}
}

func TestAcquireAfterExpiry(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)

	if !r.TryAcquire(1, "add_words") {
		t.Fatal("first acquire should succeed")
	}
	time.Sleep(30 * time.Millisecond)

	if !r.TryAcquire(1, "export") {
		t.Error("acquire after TTL elapsed should succeed")
	}
}

func TestRelease(t *testing.T) {
	r := NewRegistry(time.Minute)

	if r.Release(1) {
		t.Error("releasing an absent lock should report false")
	}

	r.TryAcquire(1, "add_words")
	if !r.Release(1) {
		t.Error("releasing a held lock should report true")
	}
	if r.IsLocked(1) {
		t.Error("lock should be gone after release")
	}
}

func TestExpiredLockInvisibleToReads(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.TryAcquire(1, "add_words")
	time.Sleep(20 * time.Millisecond)

	if r.IsLocked(1) {
		t.Error("expired lock should read as absent")
	}
	if _, ok := r.GetInfo(1); ok {
		t.Error("expired lock should not be returned by GetInfo")
	}
	if r.Count() != 0 {
		t.Errorf("Count = %d, want 0", r.Count())
	}
	if r.Release(1) {
		t.Error("releasing an expired lock should report false")
	}
}

func TestForceRelease(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.TryAcquire(1, "add_words")

	r.ForceRelease(1)
	if r.IsLocked(1) {
		t.Error("lock should be gone after force release")
	}

	// Safe on absent locks too
	r.ForceRelease(42)
}

func TestPurge(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.TryAcquire(1, "a")
	r.TryAcquire(2, "b")
	time.Sleep(20 * time.Millisecond)
	r.TryAcquire(3, "c")

	if removed := r.Purge(); removed != 2 {
		t.Errorf("Purge removed %d, want 2", removed)
	}
	if !r.IsLocked(3) {
		t.Error("live lock should survive purge")
	}
}

// TestConcurrentAcquire hammers the same user from many goroutines;
// exactly one must win.
func TestConcurrentAcquire(t *testing.T) {
	r := NewRegistry(time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TryAcquire(7, "bulk") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d acquires succeeded, want exactly 1", wins)
	}
}
