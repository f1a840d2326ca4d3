package models

// User represents a Telegram user using the bot
type User struct {
	ID               int64  `json:"id" db:"telegram_id"` // Telegram User ID
	Username         string `json:"username" db:"username"`
	FirstName        string `json:"first_name" db:"first_name"`
	LastName         string `json:"last_name" db:"last_name"`
	ReminderEnabled  bool   `json:"reminder_enabled" db:"reminder_enabled"`
	ReminderHour     int    `json:"reminder_hour" db:"reminder_hour"` // Hour of day for reminders (0-23)
	CardsPerSession  int    `json:"cards_per_session" db:"cards_per_session"`
	CreatedAt        string `json:"created_at" db:"created_at"`
	UpdatedAt        string `json:"updated_at" db:"updated_at"`
}
