package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/lernbot/pkg/models"
)

// State is the engine's position in the review state machine
type State int

const (
	// StatePresenting means the question side of a card is shown
	StatePresenting State = iota
	// StateAwaitingRating means the answer is revealed and a rating is expected
	StateAwaitingRating
	// StateFinished means the batch is exhausted
	StateFinished
)

// Recorder persists a single rating event. Implemented by
// database.ReviewRecorder; false means the rating was not recorded.
type Recorder interface {
	RecordReview(userID, wordID int64, rating, responseTimeMs int) bool
}

// Session kinds, matching the selection queues
const (
	KindDue       = "due"
	KindNew       = "new"
	KindDifficult = "difficult"
)

// Summary describes a finished or interrupted session
type Summary struct {
	Kind     string
	Answered int
	Total    int
	Correct  int
	Elapsed  time.Duration
}

// Accuracy returns the share of correct answers as a percentage
func (s Summary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered) * 100
}

// Engine drives one guided review pass over an ordered batch of items for
// a single learner. It lives in memory only and is lost on restart.
type Engine struct {
	ID     string
	UserID int64
	Kind   string

	mu          sync.Mutex
	items       []models.StudyItem
	cursor      int
	answered    int
	correct     int
	state       State
	startedAt   time.Time
	cardShownAt time.Time

	recorder Recorder
}

// NewEngine creates an engine positioned at the first card of the batch.
// An empty batch starts out finished.
func NewEngine(userID int64, items []models.StudyItem, kind string, recorder Recorder) *Engine {
	now := time.Now()
	e := &Engine{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        kind,
		items:       items,
		state:       StatePresenting,
		startedAt:   now,
		cardShownAt: now,
		recorder:    recorder,
	}
	if len(items) == 0 {
		e.state = StateFinished
	}
	return e
}

// Current returns the card at the cursor, or nil once finished
func (e *Engine) Current() *models.StudyItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked()
}

func (e *Engine) currentLocked() *models.StudyItem {
	if e.cursor >= len(e.items) {
		return nil
	}
	item := e.items[e.cursor]
	return &item
}

// Position returns the 1-based cursor position and the batch size
func (e *Engine) Position() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pos := e.cursor + 1
	if pos > len(e.items) {
		pos = len(e.items)
	}
	return pos, len(e.items)
}

// Reveal moves Presenting -> AwaitingRating. It reports false when the
// engine is not presenting a card, which callers surface as an expired
// session. No persistence side effect.
func (e *Engine) Reveal() (*models.StudyItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePresenting {
		return nil, false
	}
	item := e.currentLocked()
	if item == nil {
		return nil, false
	}
	e.state = StateAwaitingRating
	return item, true
}

// RateOutcome is the result of a rating transition
type RateOutcome struct {
	// Recorded is false when persistence failed; the engine stays on the
	// current card so the learner can retry.
	Recorded bool
	// Finished is true when the batch is exhausted
	Finished bool
	// Next is the card to present, nil when Finished
	Next *models.StudyItem
	// Summary is set when Finished
	Summary *Summary
}

// Rate applies a rating to the current card: the event is persisted through
// the recorder, counters advance, and the engine moves to the next card or
// finishes. Reports ok=false when the engine is not awaiting a rating.
func (e *Engine) Rate(rating int) (RateOutcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingRating {
		return RateOutcome{}, false
	}
	item := e.currentLocked()
	if item == nil {
		return RateOutcome{}, false
	}

	responseTime := int(time.Since(e.cardShownAt) / time.Millisecond)
	if !e.recorder.RecordReview(e.UserID, item.WordID, rating, responseTime) {
		// Stay on this card; the learner is told to retry
		return RateOutcome{Recorded: false}, true
	}

	e.answered++
	if rating >= 3 {
		e.correct++
	}
	e.cursor++

	if e.cursor >= len(e.items) {
		e.state = StateFinished
		summary := e.summaryLocked()
		return RateOutcome{Recorded: true, Finished: true, Summary: &summary}, true
	}

	e.state = StatePresenting
	e.cardShownAt = time.Now()
	return RateOutcome{Recorded: true, Next: e.currentLocked()}, true
}

// Finished reports whether the batch is exhausted
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateFinished
}

// StartedAt returns the session creation time
func (e *Engine) StartedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startedAt
}

// Summary returns the running counters, usable mid-session for the partial
// summary of an interrupted run.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

func (e *Engine) summaryLocked() Summary {
	return Summary{
		Kind:     e.Kind,
		Answered: e.answered,
		Total:    len(e.items),
		Correct:  e.correct,
		Elapsed:  time.Since(e.startedAt),
	}
}
