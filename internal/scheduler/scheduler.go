package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lernbot/internal/database"
	"github.com/example/lernbot/internal/lock"
	"github.com/example/lernbot/internal/session"
)

// Default window during which reminders may be sent
const (
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 22
)

// Notifier delivers due-review reminders to learners
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// Config tunes the periodic maintenance jobs
type Config struct {
	ReminderStartHour int
	ReminderEndHour   int
	SessionMaxAge     time.Duration
}

// DefaultConfig returns the default maintenance settings
func DefaultConfig() Config {
	return Config{
		ReminderStartHour: DefaultReminderStartHour,
		ReminderEndHour:   DefaultReminderEndHour,
		SessionMaxAge:     24 * time.Hour,
	}
}

// Scheduler manages the application's periodic tasks: due-review
// reminders, expired-lock purging and abandoned-session sweeping.
type Scheduler struct {
	scheduler *gocron.Scheduler
	config    Config

	users    *database.UserRepository
	stats    *database.StatsRepository
	sessions *session.Registry
	locks    *lock.Registry
	notifier Notifier
}

// New creates a new scheduler instance
func New(config Config, users *database.UserRepository, stats *database.StatsRepository,
	sessions *session.Registry, locks *lock.Registry, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    config,
		users:     users,
		stats:     stats,
		sessions:  sessions,
		locks:     locks,
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks in the background
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.Every(1).Minute().Do(s.purgeLocks)
	s.scheduler.Every(10).Minutes().Do(s.sweepSessions)

	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks. Jobs already running finish their
// current iteration; nothing is left behind.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies learners with due words, respecting the
// configured daily window and each learner's preferred hour.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	if currentHour < s.config.ReminderStartHour || currentHour > s.config.ReminderEndHour {
		return
	}

	users, err := s.users.GetUsersForReminder(currentHour)
	if err != nil {
		log.Printf("error getting users for reminders: %v", err)
		return
	}

	for _, user := range users {
		stats, err := s.stats.GetLearnerStats(user.ID)
		if err != nil {
			log.Printf("error getting stats for user %d: %v", user.ID, err)
			continue
		}
		if stats.DueWords == 0 {
			continue
		}
		if err := s.notifier.SendReminder(user.ID, stats.DueWords); err != nil {
			log.Printf("error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

func (s *Scheduler) purgeLocks() {
	if removed := s.locks.Purge(); removed > 0 {
		log.Printf("purged %d expired locks", removed)
	}
}

func (s *Scheduler) sweepSessions() {
	if removed := s.sessions.Sweep(s.config.SessionMaxAge); removed > 0 {
		log.Printf("swept %d abandoned sessions", removed)
	}
}
