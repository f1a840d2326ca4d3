package database

import (
	"fmt"
	"time"
)

// LearnerStats summarizes a learner's vocabulary state
type LearnerStats struct {
	TotalWords     int     `db:"total_words"`
	DueWords       int     `db:"due_words"`
	NewWords       int     `db:"new_words"`
	DifficultWords int     `db:"difficult_words"`
	AvgEasiness    float64 `db:"avg_easiness"`
}

// PerformanceStats summarizes the learner's recent review history
type PerformanceStats struct {
	TotalReviews    int     `db:"total_reviews"`
	AvgRating       float64 `db:"avg_rating"`
	GoodReviews     int     `db:"good_reviews"`
	AvgResponseMs   float64 `db:"avg_response_ms"`
	AccuracyPercent float64
}

// StatsRepository runs reporting queries over progress and review history
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new repository instance
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetLearnerStats returns counts over the learner's tracked words
func (r *StatsRepository) GetLearnerStats(userID int64) (*LearnerStats, error) {
	var stats LearnerStats
	err := r.db.Get(&stats, `
		SELECT
			COUNT(*) AS total_words,
			COALESCE(SUM(CASE WHEN next_review_date <= $1 AND repetitions > 0 THEN 1 ELSE 0 END), 0) AS due_words,
			COALESCE(SUM(CASE WHEN repetitions = 0 THEN 1 ELSE 0 END), 0) AS new_words,
			COALESCE(SUM(CASE WHEN easiness_factor < 2.0 AND repetitions > 0 THEN 1 ELSE 0 END), 0) AS difficult_words,
			COALESCE(AVG(easiness_factor), 2.5) AS avg_easiness
		FROM learning_progress
		WHERE user_id = $2
	`, time.Now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learner stats: %v", err)
	}
	return &stats, nil
}

// GetPerformanceStats returns review accuracy over the trailing period
func (r *StatsRepository) GetPerformanceStats(userID int64, days int) (*PerformanceStats, error) {
	since := time.Now().AddDate(0, 0, -days)

	var stats PerformanceStats
	err := r.db.Get(&stats, `
		SELECT
			COUNT(*) AS total_reviews,
			COALESCE(AVG(rating), 0) AS avg_rating,
			COALESCE(SUM(CASE WHEN rating >= 3 THEN 1 ELSE 0 END), 0) AS good_reviews,
			COALESCE(AVG(response_time_ms), 0) AS avg_response_ms
		FROM review_history
		WHERE user_id = $1 AND reviewed_at >= $2
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance stats: %v", err)
	}

	if stats.TotalReviews > 0 {
		stats.AccuracyPercent = float64(stats.GoodReviews) / float64(stats.TotalReviews) * 100
	}
	return &stats, nil
}
