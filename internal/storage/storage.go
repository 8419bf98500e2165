package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"autoposter-bot/internal/logger"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Storage is the SQLite backend: the post repository plus the bot session
// table.
type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db, log: logger.Component("storage")}
	if err = s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize database schema: %w", err)
	}
	s.log.WithField("path", dbPath).Info("Database connection successful and schema initialized.")
	return s, nil
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status);`,

		`CREATE TABLE IF NOT EXISTS publications (
			post_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			platform TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			platform_post_id TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			published_at TEXT,
			PRIMARY KEY (post_id, position),
			FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS bot_sessions (
			user_id INTEGER PRIMARY KEY,
			step TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			last_post_id TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("schema execution failed for query '%s': %w", query, err)
			}
		}
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Parse(time.RFC3339Nano, value)
	}
	return t, nil
}
