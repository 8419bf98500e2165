package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/session"
)

// SessionStore persists bot conversation state in the bot_sessions table.
type SessionStore struct {
	db *sql.DB
}

func (s *Storage) Sessions() *SessionStore {
	return &SessionStore{db: s.db}
}

func (s *SessionStore) Get(ctx context.Context, userID int64) (session.State, bool, error) {
	var (
		state      session.State
		platform   string
		lastPostID string
	)
	err := s.db.QueryRowContext(ctx, `SELECT step, platform, last_post_id FROM bot_sessions WHERE user_id = ?`, userID).
		Scan(&state.Step, &platform, &lastPostID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.State{}, false, nil
		}
		return session.State{}, false, fmt.Errorf("could not load session: %w", err)
	}
	state.Platform = domain.Platform(platform)
	if lastPostID != "" {
		id, err := uuid.Parse(lastPostID)
		if err != nil {
			return session.State{}, false, fmt.Errorf("invalid last_post_id %q: %w", lastPostID, err)
		}
		state.LastPostID = id
	}
	return state, true, nil
}

func (s *SessionStore) Set(ctx context.Context, userID int64, state session.State) error {
	var lastPostID string
	if state.LastPostID != uuid.Nil {
		lastPostID = state.LastPostID.String()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_sessions (user_id, step, platform, last_post_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			step = excluded.step,
			platform = excluded.platform,
			last_post_id = excluded.last_post_id,
			updated_at = excluded.updated_at`,
		userID, state.Step, string(state.Platform), lastPostID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bot_sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("could not clear session: %w", err)
	}
	return nil
}
