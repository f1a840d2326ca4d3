package models

import "time"

// ReviewEvent is an append-only record of a single rating submitted by a
// learner. Rows are written in the same transaction as the Progress update
// and are never mutated or deleted.
type ReviewEvent struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	WordID         int64     `json:"word_id" db:"word_id"`
	Rating         int       `json:"rating" db:"rating"` // 1=Again, 2=Hard, 3=Good, 4=Easy
	ResponseTimeMs int       `json:"response_time_ms" db:"response_time_ms"`
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
