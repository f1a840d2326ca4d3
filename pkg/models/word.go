package models

import "time"

// Word represents a German vocabulary entry shared across all learners
type Word struct {
	ID              int64     `json:"id" db:"id"`
	Lemma           string    `json:"lemma" db:"lemma"` // Canonical (dictionary) form
	PartOfSpeech    string    `json:"part_of_speech" db:"part_of_speech"`
	Article         string    `json:"article" db:"article"` // der/die/das for nouns, empty otherwise
	Translation     string    `json:"translation" db:"translation"`
	Example         string    `json:"example" db:"example"`
	AdditionalForms string    `json:"additional_forms" db:"additional_forms"` // e.g. plural, past participle
	Confidence      float64   `json:"confidence" db:"confidence"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
