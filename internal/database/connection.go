package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config holds database connection settings
type Config struct {
	// Type is "sqlite" or "postgres"
	Type string
	// Path is the SQLite database file path (":memory:" for tests)
	Path string
	// DSN is the PostgreSQL connection string
	DSN string
}

// ConfigFromEnv builds a Config from environment variables
func ConfigFromEnv() Config {
	cfg := Config{
		Type: os.Getenv("DB_TYPE"),
		Path: os.Getenv("DB_PATH"),
		DSN:  os.Getenv("DATABASE_URL"),
	}
	if cfg.Type == "" {
		cfg.Type = "sqlite"
	}
	if cfg.Path == "" {
		cfg.Path = filepath.Join("data", "lernbot.db")
	}
	return cfg
}

// DB wraps the sqlx connection together with the dialect in use.
// It is constructed once at startup and passed to every repository.
type DB struct {
	*sqlx.DB
	Type string
}

// Connect establishes a connection to the database and initializes the schema
func Connect(cfg Config) (*DB, error) {
	var conn *sqlx.DB
	var err error

	switch cfg.Type {
	case "postgres":
		conn, err = sqlx.Connect("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
	case "sqlite":
		if cfg.Path != ":memory:" {
			if mkErr := os.MkdirAll(filepath.Dir(cfg.Path), 0755); mkErr != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", mkErr)
			}
		}
		conn, err = sqlx.Connect("sqlite3", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}
		if _, err = conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}

	db := &DB{DB: conn, Type: cfg.Type}
	if err := db.initializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func (db *DB) initializeSchema() error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.Type == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			telegram_id INTEGER PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			reminder_enabled BOOLEAN DEFAULT true,
			reminder_hour INTEGER DEFAULT 9,
			cards_per_session INTEGER DEFAULT 10,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS words (
			id %s,
			lemma TEXT NOT NULL UNIQUE,
			part_of_speech TEXT DEFAULT '',
			article TEXT DEFAULT '',
			translation TEXT NOT NULL,
			example TEXT DEFAULT '',
			additional_forms TEXT DEFAULT '',
			confidence REAL DEFAULT 1.0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS learning_progress (
			id %s,
			user_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			repetitions INTEGER DEFAULT 0,
			easiness_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 1,
			next_review_date TIMESTAMP,
			last_reviewed TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (word_id) REFERENCES words(id),
			UNIQUE(user_id, word_id)
		)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS review_history (
			id %s,
			user_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			rating INTEGER NOT NULL,
			response_time_ms INTEGER DEFAULT 0,
			reviewed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (word_id) REFERENCES words(id)
		)`, idColumn),
		`CREATE INDEX IF NOT EXISTS idx_progress_user_due
			ON learning_progress(user_id, next_review_date)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_reviewed
			ON review_history(user_id, reviewed_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}
