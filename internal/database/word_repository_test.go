package database

import (
	"testing"
	"time"

	"github.com/example/lernbot/pkg/models"
)

func TestAddWordsToUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewWordRepository(db)
	store := NewProgressStore(db)

	words := []models.Word{
		{Lemma: "gehen", Translation: "to go", PartOfSpeech: "verb"},
		{Lemma: "Haus", Translation: "house", PartOfSpeech: "noun", Article: "das"},
		{Lemma: "kaputt", Translation: "[translation unavailable]"},
	}

	added, err := repo.AddWordsToUser(1, words)
	if err != nil {
		t.Fatalf("AddWordsToUser: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2 (invalid translation skipped)", added)
	}

	// Fresh rows land in the new queue
	items, err := store.SelectNew(1, 10, false)
	if err != nil {
		t.Fatalf("SelectNew: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("new queue has %d items, want 2", len(items))
	}
}

func TestAddWordsToUserSkipsAlreadyTracked(t *testing.T) {
	db := openTestDB(t)
	repo := NewWordRepository(db)

	words := []models.Word{{Lemma: "gehen", Translation: "to go"}}
	if _, err := repo.AddWordsToUser(1, words); err != nil {
		t.Fatalf("first add: %v", err)
	}

	added, err := repo.AddWordsToUser(1, words)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0 for an already-tracked word", added)
	}
}

func TestAddWordsToUserSharesVocabularyAcrossLearners(t *testing.T) {
	db := openTestDB(t)
	repo := NewWordRepository(db)

	words := []models.Word{{Lemma: "gehen", Translation: "to go"}}
	if _, err := repo.AddWordsToUser(1, words); err != nil {
		t.Fatalf("add for learner 1: %v", err)
	}
	if _, err := repo.AddWordsToUser(2, words); err != nil {
		t.Fatalf("add for learner 2: %v", err)
	}

	var wordCount int
	if err := db.Get(&wordCount, "SELECT COUNT(*) FROM words"); err != nil {
		t.Fatalf("counting words: %v", err)
	}
	if wordCount != 1 {
		t.Errorf("words table has %d rows, want 1 shared entry", wordCount)
	}

	var progressCount int
	if err := db.Get(&progressCount, "SELECT COUNT(*) FROM learning_progress"); err != nil {
		t.Fatalf("counting progress: %v", err)
	}
	if progressCount != 2 {
		t.Errorf("progress table has %d rows, want one per learner", progressCount)
	}
}

func TestGetByLemmaCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	repo := NewWordRepository(db)

	word := &models.Word{Lemma: "Haus", Translation: "house", Confidence: 1.0}
	if err := repo.Create(word); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if word.ID == 0 {
		t.Fatal("Create should populate the ID")
	}

	found, err := repo.GetByLemma("haus")
	if err != nil {
		t.Fatalf("GetByLemma: %v", err)
	}
	if found == nil || found.ID != word.ID {
		t.Errorf("GetByLemma(haus) = %v, want word %d", found, word.ID)
	}

	missing, err := repo.GetByLemma("unbekannt")
	if err != nil {
		t.Fatalf("GetByLemma: %v", err)
	}
	if missing != nil {
		t.Errorf("GetByLemma(unbekannt) = %v, want nil", missing)
	}
}

func TestLearnerStats(t *testing.T) {
	db := openTestDB(t)
	stats := NewStatsRepository(db)
	past := time.Now().Add(-time.Hour)

	seedWord(t, db, 1, "due1", 2, 2.5, past)
	seedWord(t, db, 1, "new1", 0, 2.5, past)
	seedWord(t, db, 1, "hard1", 3, 1.5, time.Now().Add(48*time.Hour))

	got, err := stats.GetLearnerStats(1)
	if err != nil {
		t.Fatalf("GetLearnerStats: %v", err)
	}
	if got.TotalWords != 3 {
		t.Errorf("total = %d, want 3", got.TotalWords)
	}
	if got.DueWords != 1 {
		t.Errorf("due = %d, want 1", got.DueWords)
	}
	if got.NewWords != 1 {
		t.Errorf("new = %d, want 1", got.NewWords)
	}
	if got.DifficultWords != 1 {
		t.Errorf("difficult = %d, want 1", got.DifficultWords)
	}
}

func TestPerformanceStats(t *testing.T) {
	db := openTestDB(t)
	statsRepo := NewStatsRepository(db)

	wordID := seedWord(t, db, 1, "gehen", 0, 2.5, time.Now())
	now := time.Now()
	for _, rating := range []int{4, 3, 1} {
		_, err := db.Exec(`
			INSERT INTO review_history (user_id, word_id, rating, response_time_ms, reviewed_at)
			VALUES ($1, $2, $3, 1000, $4)
		`, 1, wordID, rating, now)
		if err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}

	got, err := statsRepo.GetPerformanceStats(1, 7)
	if err != nil {
		t.Fatalf("GetPerformanceStats: %v", err)
	}
	if got.TotalReviews != 3 {
		t.Errorf("total reviews = %d, want 3", got.TotalReviews)
	}
	if got.GoodReviews != 2 {
		t.Errorf("good reviews = %d, want 2", got.GoodReviews)
	}
	if got.AccuracyPercent < 66 || got.AccuracyPercent > 67 {
		t.Errorf("accuracy = %v, want ~66.7", got.AccuracyPercent)
	}
}

func TestUserRepositoryGetOrCreate(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetOrCreate(100, "anna", "Anna", "Schmidt")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if user.CardsPerSession != 10 || user.ReminderHour != 9 {
		t.Errorf("defaults not applied: %+v", user)
	}

	user.ReminderHour = 20
	user.CardsPerSession = 5
	if err := repo.UpdateSettings(user); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	again, err := repo.GetOrCreate(100, "anna", "Anna", "Schmidt")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if again.ReminderHour != 20 || again.CardsPerSession != 5 {
		t.Errorf("settings lost on re-fetch: %+v", again)
	}

	users, err := repo.GetUsersForReminder(20)
	if err != nil {
		t.Fatalf("GetUsersForReminder: %v", err)
	}
	if len(users) != 1 || users[0].ID != 100 {
		t.Errorf("reminder users = %v, want [100]", users)
	}
}
