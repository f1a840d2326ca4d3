package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/lernbot/pkg/models"
)

// ProgressStore runs the selection queries over per-learner progress rows.
// All queries are read-only; progress mutation goes through ReviewRecorder.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new store over the given connection
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

const studyItemColumns = `
	w.id AS word_id, w.lemma, w.part_of_speech, w.article, w.translation,
	w.example, w.additional_forms,
	lp.repetitions, lp.easiness_factor, lp.interval_days,
	lp.next_review_date, lp.last_reviewed`

// SelectDue returns words whose next review timestamp has passed.
// Never-reviewed words are excluded here; the new-word queue owns them.
func (s *ProgressStore) SelectDue(userID int64, limit int, randomize bool) ([]models.StudyItem, error) {
	order := "ORDER BY lp.next_review_date ASC"
	if randomize {
		order = "ORDER BY RANDOM()"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM words w
		JOIN learning_progress lp ON w.id = lp.word_id
		WHERE lp.user_id = $1 AND lp.next_review_date <= $2 AND lp.repetitions > 0
		%s
		LIMIT $3
	`, studyItemColumns, order)

	var items []models.StudyItem
	if err := s.db.Select(&items, query, userID, time.Now(), limit); err != nil {
		return nil, fmt.Errorf("failed to get due words: %v", err)
	}
	return items, nil
}

// SelectNew returns words the learner has never rated
func (s *ProgressStore) SelectNew(userID int64, limit int, randomize bool) ([]models.StudyItem, error) {
	order := "ORDER BY lp.created_at ASC, lp.id ASC"
	if randomize {
		order = "ORDER BY RANDOM()"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM words w
		JOIN learning_progress lp ON w.id = lp.word_id
		WHERE lp.user_id = $1 AND lp.repetitions = 0
		%s
		LIMIT $2
	`, studyItemColumns, order)

	var items []models.StudyItem
	if err := s.db.Select(&items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get new words: %v", err)
	}
	return items, nil
}

// SelectDifficult returns reviewed words with a low easiness factor
func (s *ProgressStore) SelectDifficult(userID int64, limit int, randomize bool) ([]models.StudyItem, error) {
	order := "ORDER BY lp.easiness_factor ASC"
	if randomize {
		order = "ORDER BY RANDOM()"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM words w
		JOIN learning_progress lp ON w.id = lp.word_id
		WHERE lp.user_id = $1 AND lp.easiness_factor < 2.0 AND lp.repetitions > 0
		%s
		LIMIT $2
	`, studyItemColumns, order)

	var items []models.StudyItem
	if err := s.db.Select(&items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get difficult words: %v", err)
	}
	return items, nil
}

// GetProgress returns the progress row for a specific user and word,
// or nil if the word has never been touched by the learner.
func (s *ProgressStore) GetProgress(userID, wordID int64) (*models.Progress, error) {
	var progress models.Progress
	err := s.db.Get(&progress, `
		SELECT * FROM learning_progress
		WHERE user_id = $1 AND word_id = $2
	`, userID, wordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %v", err)
	}
	return &progress, nil
}

// CheckExisting reports, for each candidate surface form, whether the
// learner already tracks any inflected variant of it. The learner's lemma
// set is loaded in a single scan; every candidate and its derived base
// forms are then checked in memory.
func (s *ProgressStore) CheckExisting(userID int64, surfaceForms []string) (map[string]bool, error) {
	result := make(map[string]bool, len(surfaceForms))
	if len(surfaceForms) == 0 {
		return result, nil
	}

	var lemmas []string
	err := s.db.Select(&lemmas, `
		SELECT LOWER(w.lemma)
		FROM words w
		JOIN learning_progress lp ON w.id = lp.word_id
		WHERE lp.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load learner lemmas: %v", err)
	}

	known := make(map[string]bool, len(lemmas))
	for _, l := range lemmas {
		known[l] = true
	}

	for _, form := range surfaceForms {
		exists := false
		for _, candidate := range PotentialLemmas(form) {
			if known[strings.ToLower(candidate)] {
				exists = true
				break
			}
		}
		result[form] = exists
	}
	return result, nil
}

// PotentialLemmas derives candidate canonical forms for an inflected German
// surface form via suffix substitution, mirroring regular verb conjugation
// (bedeutest/bedeutet/bedeute -> bedeuten). This is a bounded best-effort
// heuristic, not a morphological analyzer: a suffix rule is only applied
// when the remaining stem is longer than 2 runes. The input itself is
// always the first candidate.
func PotentialLemmas(word string) []string {
	candidates := []string{word}
	runes := []rune(word)

	appendIfPlausible := func(stem []rune) {
		if len(stem) > 2 {
			candidates = append(candidates, string(stem)+"en")
		}
	}

	switch {
	case strings.HasSuffix(word, "en"):
		if len(runes) > 4 {
			candidates = append(candidates, string(runes[:len(runes)-2]))
		}
	case strings.HasSuffix(word, "est"):
		appendIfPlausible(runes[:len(runes)-3])
	case strings.HasSuffix(word, "et"):
		appendIfPlausible(runes[:len(runes)-2])
	case strings.HasSuffix(word, "st"):
		appendIfPlausible(runes[:len(runes)-2])
	case strings.HasSuffix(word, "t"):
		appendIfPlausible(runes[:len(runes)-1])
	case strings.HasSuffix(word, "e"):
		appendIfPlausible(runes[:len(runes)-1])
	}

	return candidates
}
