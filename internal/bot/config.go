package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Default number of cards per study session
	DefaultCardsPerSession int
	// Maximum number of cards a learner may request per session
	MaxCardsPerSession int
	// Default hour of day for reminders
	DefaultReminderHour int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DefaultCardsPerSession: 10,
		MaxCardsPerSession:     50,
		DefaultReminderHour:    9,
	}
}
