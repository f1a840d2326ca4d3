package spaced_repetition

import (
	"fmt"
	"math"
	"time"
)

// SM2 implements a modified SuperMemo-2 algorithm for spaced repetition.
// All methods are pure: they never touch storage and are deterministic
// for a given input.
type SM2 struct {
	// Easiness factor assigned to words that have never been rated
	DefaultEasiness float64
	// Lower bound for the easiness factor
	MinEasiness float64
	// Upper bound for the easiness factor
	MaxEasiness float64
	// Maximum review interval in days
	MaxInterval int
}

// NewSM2 creates a new SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		DefaultEasiness: 2.5,
		MinEasiness:     1.3,
		MaxEasiness:     3.0,
		MaxInterval:     365,
	}
}

const (
	// RatingAgain means the word was not recalled at all
	RatingAgain = 1
	// RatingHard means the word was recalled with significant effort
	RatingHard = 2
	// RatingGood means the word was recalled correctly
	RatingGood = 3
	// RatingEasy means the word was recalled instantly
	RatingEasy = 4
)

// ReviewResult holds the new scheduling state produced by one review
type ReviewResult struct {
	NewInterval       int       // New interval in days
	NewEasinessFactor float64   // Updated easiness factor
	NextReviewDate    time.Time // When the word is due again
	Graduated         bool      // Word has moved beyond the initial learning phase
}

// CalculateReview applies the SM-2 variant to one rating event.
// rating is 1 (again), 2 (hard), 3 (good) or 4 (easy); repetitions,
// intervalDays and easinessFactor describe the current progress state.
// A zero reviewDate defaults to the current time. The repetition counter
// itself is managed by the caller: reset on rating 1, incremented otherwise.
func (sm *SM2) CalculateReview(rating, repetitions, intervalDays int, easinessFactor float64, reviewDate time.Time) (ReviewResult, error) {
	if rating < RatingAgain || rating > RatingEasy {
		return ReviewResult{}, fmt.Errorf("rating must be between 1 and 4, got %d", rating)
	}

	if reviewDate.IsZero() {
		reviewDate = time.Now()
	}

	// "Again" resets to an immediate review in the current session
	if rating == RatingAgain {
		return ReviewResult{
			NewInterval:       0,
			NewEasinessFactor: sm.clampEasiness(easinessFactor - 0.2),
			NextReviewDate:    reviewDate,
			Graduated:         false,
		}, nil
	}

	newEasiness := sm.calculateNewEasiness(rating, easinessFactor)
	newInterval := sm.calculateNewInterval(rating, repetitions, intervalDays, newEasiness)

	return ReviewResult{
		NewInterval:       newInterval,
		NewEasinessFactor: newEasiness,
		NextReviewDate:    reviewDate.AddDate(0, 0, newInterval),
		Graduated:         repetitions >= 2 && newInterval > 1,
	}, nil
}

// InitialSchedule returns the scheduling state assigned to a brand-new word
func (sm *SM2) InitialSchedule(asOf time.Time) ReviewResult {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return ReviewResult{
		NewInterval:       1,
		NewEasinessFactor: sm.DefaultEasiness,
		NextReviewDate:    asOf,
		Graduated:         false,
	}
}

// calculateNewEasiness adjusts the easiness factor for ratings 2-4
func (sm *SM2) calculateNewEasiness(rating int, currentEasiness float64) float64 {
	var adjustment float64
	switch rating {
	case RatingHard:
		adjustment = -0.15
	case RatingGood:
		adjustment = 0.0
	case RatingEasy:
		adjustment = 0.15
	}
	return sm.clampEasiness(currentEasiness + adjustment)
}

// calculateNewInterval computes the next interval by repetition tier
func (sm *SM2) calculateNewInterval(rating, repetitions, currentInterval int, easinessFactor float64) int {
	switch {
	case repetitions == 0:
		// First successful review
		if rating == RatingEasy {
			return 4
		}
		return 1

	case repetitions == 1:
		// Second successful review
		switch rating {
		case RatingHard:
			return maxInt(1, roundDays(float64(currentInterval)*1.2))
		case RatingGood:
			return 6
		default: // Easy
			return maxInt(6, roundDays(float64(currentInterval)*easinessFactor*1.3))
		}

	default:
		// Subsequent reviews
		var multiplier float64
		switch rating {
		case RatingHard:
			multiplier = math.Max(1.2, easinessFactor*0.8)
		case RatingGood:
			multiplier = easinessFactor
		default: // Easy
			multiplier = easinessFactor * 1.3
		}

		newInterval := maxInt(1, roundDays(float64(currentInterval)*multiplier))
		if newInterval > sm.MaxInterval {
			return sm.MaxInterval
		}
		return newInterval
	}
}

func (sm *SM2) clampEasiness(value float64) float64 {
	if value < sm.MinEasiness {
		return sm.MinEasiness
	}
	if value > sm.MaxEasiness {
		return sm.MaxEasiness
	}
	return value
}

// PredictRetention estimates the probability that a word is still recalled
// after the given number of days. Used by reporting only, not scheduling.
func (sm *SM2) PredictRetention(daysSinceReview int, easinessFactor float64) float64 {
	if daysSinceReview <= 0 {
		return 1.0
	}

	// Base retention decays exponentially; an easier word decays slower
	baseRetention := math.Pow(0.9, float64(daysSinceReview))
	easinessMultiplier := math.Sqrt(easinessFactor / sm.DefaultEasiness)

	retention := baseRetention * easinessMultiplier
	return math.Max(0.0, math.Min(1.0, retention))
}

// OptimalReviewInterval finds the interval in days at which predicted
// retention drops to targetRetention, via bounded binary search.
func (sm *SM2) OptimalReviewInterval(easinessFactor, targetRetention float64) int {
	minDays, maxDays := 1, sm.MaxInterval

	for i := 0; i < 20; i++ {
		midDays := (minDays + maxDays) / 2
		predicted := sm.PredictRetention(midDays, easinessFactor)

		if math.Abs(predicted-targetRetention) < 0.01 {
			return midDays
		}
		if predicted > targetRetention {
			minDays = midDays + 1
		} else {
			maxDays = midDays - 1
		}
	}

	return minDays
}

func roundDays(v float64) int {
	return int(math.Round(v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
