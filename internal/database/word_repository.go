package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/lernbot/pkg/models"
)

// WordRepository handles the shared vocabulary table and the lazy creation
// of per-learner progress rows when words are assigned to a learner.
type WordRepository struct {
	db *DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetByID returns a word by its ID
func (r *WordRepository) GetByID(wordID int64) (*models.Word, error) {
	var word models.Word
	err := r.db.Get(&word, "SELECT * FROM words WHERE id = $1", wordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &word, nil
}

// GetByLemma returns a word by its canonical form, case-insensitively
func (r *WordRepository) GetByLemma(lemma string) (*models.Word, error) {
	var word models.Word
	err := r.db.Get(&word, "SELECT * FROM words WHERE LOWER(lemma) = LOWER($1)", lemma)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get word by lemma: %v", err)
	}
	return &word, nil
}

// Create inserts a new vocabulary entry
func (r *WordRepository) Create(word *models.Word) error {
	now := time.Now()
	if r.db.Type == "postgres" {
		return r.db.QueryRow(`
			INSERT INTO words (lemma, part_of_speech, article, translation, example, additional_forms, confidence, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, word.Lemma, word.PartOfSpeech, word.Article, word.Translation,
			word.Example, word.AdditionalForms, word.Confidence, now, now).Scan(&word.ID)
	}

	result, err := r.db.Exec(`
		INSERT INTO words (lemma, part_of_speech, article, translation, example, additional_forms, confidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, word.Lemma, word.PartOfSpeech, word.Article, word.Translation,
		word.Example, word.AdditionalForms, word.Confidence, now, now)
	if err != nil {
		return fmt.Errorf("failed to create word: %v", err)
	}
	word.ID, err = result.LastInsertId()
	return err
}

// GetWordsByUser returns all words tracked by a learner
func (r *WordRepository) GetWordsByUser(userID int64) ([]models.StudyItem, error) {
	var items []models.StudyItem
	err := r.db.Select(&items, fmt.Sprintf(`
		SELECT %s
		FROM words w
		JOIN learning_progress lp ON w.id = lp.word_id
		WHERE lp.user_id = $1
		ORDER BY lp.created_at DESC
	`, studyItemColumns), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by user: %v", err)
	}
	return items, nil
}

// AddWordsToUser assigns a batch of words to a learner, creating missing
// vocabulary entries and fresh progress rows. Words already tracked by the
// learner, and words with unusable translations, are skipped. Returns the
// number of words actually added.
func (r *WordRepository) AddWordsToUser(userID int64, words []models.Word) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	added := 0
	now := time.Now()

	for _, word := range words {
		if !isValidTranslation(word.Translation) {
			log.Printf("skipping word %q: unusable translation %q", word.Lemma, word.Translation)
			continue
		}

		// Reuse the shared vocabulary entry when one exists
		var wordID int64
		err := tx.Get(&wordID, "SELECT id FROM words WHERE LOWER(lemma) = LOWER($1)", word.Lemma)
		if errors.Is(err, sql.ErrNoRows) {
			wordID, err = insertWordTx(tx, r.db.Type, &word, now)
		}
		if err != nil {
			return added, fmt.Errorf("failed to upsert word %q: %v", word.Lemma, err)
		}

		var exists int
		err = tx.Get(&exists, "SELECT COUNT(*) FROM learning_progress WHERE user_id = $1 AND word_id = $2", userID, wordID)
		if err != nil {
			return added, fmt.Errorf("failed to check progress for %q: %v", word.Lemma, err)
		}
		if exists > 0 {
			continue
		}

		_, err = tx.Exec(`
			INSERT INTO learning_progress (user_id, word_id, repetitions, easiness_factor, interval_days, next_review_date, created_at, updated_at)
			VALUES ($1, $2, 0, 2.5, 1, $3, $4, $5)
		`, userID, wordID, now, now, now)
		if err != nil {
			return added, fmt.Errorf("failed to create progress for %q: %v", word.Lemma, err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit word batch: %v", err)
	}
	return added, nil
}

func insertWordTx(tx sqlxQuerier, dbType string, word *models.Word, now time.Time) (int64, error) {
	confidence := word.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	if dbType == "postgres" {
		var id int64
		err := tx.QueryRow(`
			INSERT INTO words (lemma, part_of_speech, article, translation, example, additional_forms, confidence, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, word.Lemma, word.PartOfSpeech, word.Article, word.Translation,
			word.Example, word.AdditionalForms, confidence, now, now).Scan(&id)
		return id, err
	}

	result, err := tx.Exec(`
		INSERT INTO words (lemma, part_of_speech, article, translation, example, additional_forms, confidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, word.Lemma, word.PartOfSpeech, word.Article, word.Translation,
		word.Example, word.AdditionalForms, confidence, now, now)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// isValidTranslation filters out placeholder values produced upstream when
// enrichment fails.
func isValidTranslation(translation string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(translation))
	if trimmed == "" {
		return false
	}
	for _, pattern := range []string{"translation unavailable", "unavailable", "error", "failed"} {
		if strings.Contains(trimmed, pattern) {
			return false
		}
	}
	return true
}

// sqlxQuerier is satisfied by both *sqlx.Tx and *sqlx.DB
type sqlxQuerier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
