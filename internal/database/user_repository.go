package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/lernbot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by Telegram ID
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, "SELECT * FROM users WHERE telegram_id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetOrCreate returns the stored user, registering a new one on first
// contact with default settings.
func (r *UserRepository) GetOrCreate(id int64, username, firstName, lastName string) (*models.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	now := time.Now()
	_, err = r.db.Exec(`
		INSERT INTO users (telegram_id, username, first_name, last_name, reminder_enabled, reminder_hour, cards_per_session, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, username, firstName, lastName, true, 9, 10, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return r.GetByID(id)
}

// UpdateSettings stores the user's reminder and session preferences
func (r *UserRepository) UpdateSettings(user *models.User) error {
	_, err := r.db.Exec(`
		UPDATE users SET
			reminder_enabled = $1,
			reminder_hour = $2,
			cards_per_session = $3,
			updated_at = $4
		WHERE telegram_id = $5
	`, user.ReminderEnabled, user.ReminderHour, user.CardsPerSession, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %v", err)
	}
	return nil
}

// GetUsersForReminder returns users who opted into reminders at the given hour
func (r *UserRepository) GetUsersForReminder(hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.Select(&users, `
		SELECT * FROM users
		WHERE reminder_enabled = $1 AND reminder_hour = $2
	`, true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for reminder: %v", err)
	}
	return users, nil
}
