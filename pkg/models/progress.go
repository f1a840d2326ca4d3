package models

import (
	"database/sql"
	"time"
)

// Progress tracks a learner's scheduling state for a single word.
// Exactly one row exists per (user, word) pair, created lazily on first
// contact. Repetitions == 0 means the word has never been rated.
type Progress struct {
	ID             int64        `json:"id" db:"id"`
	UserID         int64        `json:"user_id" db:"user_id"` // Telegram user ID
	WordID         int64        `json:"word_id" db:"word_id"`
	Repetitions    int          `json:"repetitions" db:"repetitions"`
	EasinessFactor float64      `json:"easiness_factor" db:"easiness_factor"`
	IntervalDays   int          `json:"interval_days" db:"interval_days"`
	NextReviewDate time.Time    `json:"next_review_date" db:"next_review_date"`
	LastReviewed   sql.NullTime `json:"last_reviewed" db:"last_reviewed"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}
