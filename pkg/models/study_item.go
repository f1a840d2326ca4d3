package models

import (
	"database/sql"
	"time"
)

// StudyItem is a word joined with the learner's scheduling state, as
// returned by the selection queries (due / new / difficult).
type StudyItem struct {
	WordID          int64        `json:"word_id" db:"word_id"`
	Lemma           string       `json:"lemma" db:"lemma"`
	PartOfSpeech    string       `json:"part_of_speech" db:"part_of_speech"`
	Article         string       `json:"article" db:"article"`
	Translation     string       `json:"translation" db:"translation"`
	Example         string       `json:"example" db:"example"`
	AdditionalForms string       `json:"additional_forms" db:"additional_forms"`
	Repetitions     int          `json:"repetitions" db:"repetitions"`
	EasinessFactor  float64      `json:"easiness_factor" db:"easiness_factor"`
	IntervalDays    int          `json:"interval_days" db:"interval_days"`
	NextReviewDate  time.Time    `json:"next_review_date" db:"next_review_date"`
	LastReviewed    sql.NullTime `json:"last_reviewed" db:"last_reviewed"`
}
