package session

import (
	"sync"
	"testing"
	"time"
)

type fakeNotifier struct {
	mu        sync.Mutex
	summaries []Summary
}

func (f *fakeNotifier) SessionInterrupted(userID int64, summary Summary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
}

func TestStartReplacesExistingSession(t *testing.T) {
	rec := &fakeRecorder{}
	notifier := &fakeNotifier{}
	r := NewRegistry(rec, notifier)

	first := r.Start(10, makeBatch(1, 2, 3), KindDue)

	// Answer one card, then start a second session mid-run
	first.Reveal()
	first.Rate(4)

	second := r.Start(10, makeBatch(4, 5), KindNew)

	if got := r.Get(10); got != second {
		t.Error("registry should return the new engine")
	}

	if len(notifier.summaries) != 1 {
		t.Fatalf("got %d interruption summaries, want exactly 1", len(notifier.summaries))
	}
	summary := notifier.summaries[0]
	if summary.Answered != 1 || summary.Total != 3 {
		t.Errorf("partial summary = %d/%d, want 1/3", summary.Answered, summary.Total)
	}
	if summary.Kind != KindDue {
		t.Errorf("summary kind = %q, want %q", summary.Kind, KindDue)
	}
}

func TestStartWithoutExistingSessionEmitsNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(&fakeRecorder{}, notifier)

	r.Start(10, makeBatch(1), KindDue)
	if len(notifier.summaries) != 0 {
		t.Errorf("got %d summaries, want 0", len(notifier.summaries))
	}
}

func TestGetUnknownUser(t *testing.T) {
	r := NewRegistry(&fakeRecorder{}, &fakeNotifier{})
	if r.Get(999) != nil {
		t.Error("unknown user should have no session")
	}
}

func TestRemoveOnlyDropsMatchingEngine(t *testing.T) {
	r := NewRegistry(&fakeRecorder{}, &fakeNotifier{})

	first := r.Start(10, makeBatch(1), KindDue)
	second := r.Start(10, makeBatch(2), KindNew)

	// A stale finish of the first session must not remove the second
	r.Remove(10, first)
	if r.Get(10) != second {
		t.Error("removing a stale engine dropped the active one")
	}

	r.Remove(10, second)
	if r.Get(10) != nil {
		t.Error("active engine should be removed")
	}
}

func TestSweepRemovesOldSessions(t *testing.T) {
	r := NewRegistry(&fakeRecorder{}, &fakeNotifier{})

	old := r.Start(10, makeBatch(1), KindDue)
	old.mu.Lock()
	old.startedAt = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	r.Start(11, makeBatch(2), KindDue)

	if removed := r.Sweep(time.Hour); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if r.Get(10) != nil {
		t.Error("old session should be swept")
	}
	if r.Get(11) == nil {
		t.Error("fresh session should survive the sweep")
	}
}

func TestConcurrentStartsInstallExactlyOneEngine(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewRegistry(&fakeRecorder{}, notifier)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Start(10, makeBatch(1, 2), KindDue)
		}()
	}
	wg.Wait()

	if r.Count() != 1 {
		t.Errorf("registry holds %d sessions for one user, want 1", r.Count())
	}
	// Every replaced session emits its summary exactly once
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.summaries) != 19 {
		t.Errorf("got %d interruption summaries, want 19", len(notifier.summaries))
	}
}
