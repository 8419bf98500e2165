package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
)

const (
	StepIdle          = ""
	StepAwaitingTopic = "awaiting_topic"
)

// State is the per-user conversation state of the bot.
type State struct {
	Step       string
	Platform   domain.Platform
	LastPostID uuid.UUID
}

// Store keeps conversation state keyed by Telegram user id. Get returns a
// zero State and false for unknown users.
type Store interface {
	Get(ctx context.Context, userID int64) (State, bool, error)
	Set(ctx context.Context, userID int64, state State) error
	Clear(ctx context.Context, userID int64) error
}

type MemoryStore struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	return state, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}
