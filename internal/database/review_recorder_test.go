package database

import (
	"math"
	"testing"
	"time"

	"github.com/example/lernbot/internal/spaced_repetition"
)

func newTestRecorder(t *testing.T) (*DB, *ReviewRecorder, *ProgressStore) {
	t.Helper()
	db := openTestDB(t)
	srs := spaced_repetition.NewSM2()
	return db, NewReviewRecorder(db, srs), NewProgressStore(db)
}

func countHistory(t *testing.T, db *DB, userID, wordID int64) int {
	t.Helper()
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM review_history WHERE user_id = $1 AND word_id = $2", userID, wordID)
	if err != nil {
		t.Fatalf("counting history: %v", err)
	}
	return count
}

func TestRecordReviewCreatesProgressOnFirstContact(t *testing.T) {
	db, recorder, store := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "gehen", 0, 2.5, time.Now())

	// Drop the seeded progress row to simulate true first contact
	if _, err := db.Exec("DELETE FROM learning_progress WHERE user_id = 1"); err != nil {
		t.Fatalf("clearing progress: %v", err)
	}

	if !recorder.RecordReview(1, wordID, 3, 1200) {
		t.Fatal("RecordReview should succeed")
	}

	progress, err := store.GetProgress(1, wordID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress == nil {
		t.Fatal("progress row should have been created")
	}
	if progress.Repetitions != 1 {
		t.Errorf("repetitions = %d, want 1", progress.Repetitions)
	}
	if progress.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1", progress.IntervalDays)
	}
	if !progress.LastReviewed.Valid {
		t.Error("last_reviewed should be set")
	}
	if countHistory(t, db, 1, wordID) != 1 {
		t.Error("exactly one history row should exist")
	}
}

func TestRecordReviewUpdatesExistingProgress(t *testing.T) {
	db, recorder, store := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "sprechen", 1, 2.5, time.Now())

	if !recorder.RecordReview(1, wordID, 3, 800) {
		t.Fatal("RecordReview should succeed")
	}

	progress, err := store.GetProgress(1, wordID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	// Second successful review with "good": the tier table says 6 days
	if progress.IntervalDays != 6 {
		t.Errorf("interval = %d, want 6", progress.IntervalDays)
	}
	if progress.Repetitions != 2 {
		t.Errorf("repetitions = %d, want 2", progress.Repetitions)
	}
}

func TestRecordReviewAgainResetsRepetitions(t *testing.T) {
	db, recorder, store := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "vergessen", 5, 2.0, time.Now())

	if !recorder.RecordReview(1, wordID, 1, 500) {
		t.Fatal("RecordReview should succeed")
	}

	progress, err := store.GetProgress(1, wordID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0 after again-rating", progress.Repetitions)
	}
	if progress.IntervalDays != 0 {
		t.Errorf("interval = %d, want 0", progress.IntervalDays)
	}
	if math.Abs(progress.EasinessFactor-1.8) > 1e-9 {
		t.Errorf("easiness = %v, want 1.8", progress.EasinessFactor)
	}
}

func TestRecordReviewRejectsInvalidRating(t *testing.T) {
	db, recorder, _ := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "gehen", 1, 2.5, time.Now())

	for _, rating := range []int{0, 5, -1} {
		if recorder.RecordReview(1, wordID, rating, 100) {
			t.Errorf("rating %d should be rejected", rating)
		}
	}
	if countHistory(t, db, 1, wordID) != 0 {
		t.Error("invalid ratings must never reach the history table")
	}
}

// TestRecordReviewRoundTrip verifies a just-reviewed word leaves the new
// queue, and the due queue too when its next review is in the future.
func TestRecordReviewRoundTrip(t *testing.T) {
	db, recorder, store := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "lernen", 0, 2.5, time.Now().Add(-time.Hour))

	if !recorder.RecordReview(1, wordID, 3, 900) {
		t.Fatal("RecordReview should succeed")
	}

	newItems, err := store.SelectNew(1, 10, false)
	if err != nil {
		t.Fatalf("SelectNew: %v", err)
	}
	for _, item := range newItems {
		if item.WordID == wordID {
			t.Error("reviewed word still appears in the new queue")
		}
	}

	// Rating 3 at repetitions 0 schedules one day out
	dueItems, err := store.SelectDue(1, 10, false)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	for _, item := range dueItems {
		if item.WordID == wordID {
			t.Error("word scheduled in the future still appears in the due queue")
		}
	}
}

func TestRecordReviewAppendsHistoryPerRating(t *testing.T) {
	db, recorder, _ := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "gehen", 0, 2.5, time.Now())

	for _, rating := range []int{3, 3, 4, 2, 3} {
		if !recorder.RecordReview(1, wordID, rating, 100) {
			t.Fatalf("RecordReview(rating=%d) failed", rating)
		}
	}
	if got := countHistory(t, db, 1, wordID); got != 5 {
		t.Errorf("history rows = %d, want 5", got)
	}
}

func TestResetProgress(t *testing.T) {
	db, recorder, store := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "gehen", 4, 1.6, time.Now().Add(72*time.Hour))

	if err := recorder.ResetProgress(1, wordID); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}

	progress, err := store.GetProgress(1, wordID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress.Repetitions != 0 || progress.IntervalDays != 1 {
		t.Errorf("progress not reset: %+v", progress)
	}
	if progress.EasinessFactor != 2.5 {
		t.Errorf("easiness = %v, want default 2.5", progress.EasinessFactor)
	}
	if progress.LastReviewed.Valid {
		t.Error("last_reviewed should be cleared")
	}

	if err := recorder.ResetProgress(1, 9999); err == nil {
		t.Error("resetting unknown progress should fail")
	}
}

func TestDeleteProgressKeepsHistory(t *testing.T) {
	db, recorder, store := newTestRecorder(t)
	wordID := seedWord(t, db, 1, "gehen", 0, 2.5, time.Now())

	recorder.RecordReview(1, wordID, 3, 100)

	if err := recorder.DeleteProgress(1, wordID); err != nil {
		t.Fatalf("DeleteProgress: %v", err)
	}

	progress, err := store.GetProgress(1, wordID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress != nil {
		t.Error("progress row should be gone")
	}
	if countHistory(t, db, 1, wordID) != 1 {
		t.Error("history is append-only and must survive a progress delete")
	}
}
