package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/lernbot/internal/spaced_repetition"
	"github.com/example/lernbot/pkg/models"
)

// ReviewRecorder applies rating events to persisted progress. Every call
// runs as a single transaction: the progress update and the review history
// row either both land or neither does.
type ReviewRecorder struct {
	db  *DB
	srs *spaced_repetition.SM2
}

// NewReviewRecorder creates a new recorder over the given connection
func NewReviewRecorder(db *DB, srs *spaced_repetition.SM2) *ReviewRecorder {
	return &ReviewRecorder{db: db, srs: srs}
}

// RecordReview applies one rating to a learner's progress for a word,
// creating the progress row on first contact. The boolean result is the
// caller-facing contract: false means the rating was not recorded and may
// be retried; details go to the log. An out-of-range rating is rejected
// before anything is written.
func (r *ReviewRecorder) RecordReview(userID, wordID int64, rating, responseTimeMs int) bool {
	if rating < spaced_repetition.RatingAgain || rating > spaced_repetition.RatingEasy {
		log.Printf("rejecting review with invalid rating %d for user %d, word %d", rating, userID, wordID)
		return false
	}

	tx, err := r.db.Beginx()
	if err != nil {
		log.Printf("failed to begin review transaction: %v", err)
		return false
	}
	defer tx.Rollback()

	now := time.Now()

	var current models.Progress
	err = tx.Get(&current, `
		SELECT * FROM learning_progress
		WHERE user_id = $1 AND word_id = $2
	`, userID, wordID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First contact with this word: synthesize the initial state
		current = models.Progress{
			UserID:         userID,
			WordID:         wordID,
			Repetitions:    0,
			EasinessFactor: r.srs.DefaultEasiness,
			IntervalDays:   1,
		}
		err = r.insertProgress(tx, &current, rating, now)
	case err != nil:
		log.Printf("failed to read progress for user %d, word %d: %v", userID, wordID, err)
		return false
	default:
		err = r.updateProgress(tx, &current, rating, now)
	}
	if err != nil {
		log.Printf("failed to apply review for user %d, word %d: %v", userID, wordID, err)
		return false
	}

	_, err = tx.Exec(`
		INSERT INTO review_history (user_id, word_id, rating, response_time_ms, reviewed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, wordID, rating, responseTimeMs, now)
	if err != nil {
		log.Printf("failed to insert review history for user %d, word %d: %v", userID, wordID, err)
		return false
	}

	if err := tx.Commit(); err != nil {
		log.Printf("failed to commit review for user %d, word %d: %v", userID, wordID, err)
		return false
	}
	return true
}

// nextRepetitions applies the counter policy: "again" restarts the
// learning phase, everything else advances it.
func nextRepetitions(current, rating int) int {
	if rating == spaced_repetition.RatingAgain {
		return 0
	}
	return current + 1
}

func (r *ReviewRecorder) insertProgress(tx sqlxTx, progress *models.Progress, rating int, now time.Time) error {
	result, err := r.srs.CalculateReview(rating, progress.Repetitions, progress.IntervalDays, progress.EasinessFactor, now)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO learning_progress (
			user_id, word_id, repetitions, easiness_factor, interval_days,
			next_review_date, last_reviewed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		progress.UserID,
		progress.WordID,
		nextRepetitions(progress.Repetitions, rating),
		result.NewEasinessFactor,
		result.NewInterval,
		result.NextReviewDate,
		now,
		now,
		now,
	)
	return err
}

func (r *ReviewRecorder) updateProgress(tx sqlxTx, progress *models.Progress, rating int, now time.Time) error {
	result, err := r.srs.CalculateReview(rating, progress.Repetitions, progress.IntervalDays, progress.EasinessFactor, now)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE learning_progress SET
			repetitions = $1,
			easiness_factor = $2,
			interval_days = $3,
			next_review_date = $4,
			last_reviewed = $5,
			updated_at = $6
		WHERE user_id = $7 AND word_id = $8
	`,
		nextRepetitions(progress.Repetitions, rating),
		result.NewEasinessFactor,
		result.NewInterval,
		result.NextReviewDate,
		now,
		now,
		progress.UserID,
		progress.WordID,
	)
	return err
}

// ResetProgress returns a word to the never-reviewed state. The review
// history is left untouched; it is an append-only record.
func (r *ReviewRecorder) ResetProgress(userID, wordID int64) error {
	now := time.Now()
	result, err := r.db.Exec(`
		UPDATE learning_progress SET
			repetitions = 0,
			easiness_factor = $1,
			interval_days = 1,
			next_review_date = $2,
			last_reviewed = NULL,
			updated_at = $3
		WHERE user_id = $4 AND word_id = $5
	`, r.srs.DefaultEasiness, now, now, userID, wordID)
	if err != nil {
		return fmt.Errorf("failed to reset progress: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no progress found for user %d, word %d", userID, wordID)
	}
	return nil
}

// DeleteProgress removes a learner's progress row for a word. History rows
// stay: they record reviews that actually happened.
func (r *ReviewRecorder) DeleteProgress(userID, wordID int64) error {
	result, err := r.db.Exec(`
		DELETE FROM learning_progress WHERE user_id = $1 AND word_id = $2
	`, userID, wordID)
	if err != nil {
		return fmt.Errorf("failed to delete progress: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no progress found for user %d, word %d", userID, wordID)
	}
	return nil
}

// sqlxTx is the subset of sqlx.Tx the recorder needs; it keeps the
// insert/update helpers testable against either a transaction or a plain
// connection.
type sqlxTx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}
