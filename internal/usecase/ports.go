package usecase

import (
	"context"

	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
)

// PostRepository persists post aggregates. GetByID returns
// domain.ErrPostNotFound when the id is unknown. Lists are newest first.
type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*domain.Post, error)
	GetByStatus(ctx context.Context, status domain.Status) ([]*domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetConfirmedPosts(ctx context.Context) ([]*domain.Post, error)
}

// ContentGenerator never fails; backend errors yield fallback content.
// An empty platform means no style hint.
type ContentGenerator interface {
	Generate(ctx context.Context, topic string, platform domain.Platform, tags []string) domain.PostContent
	Regenerate(ctx context.Context, previous domain.PostContent, platform domain.Platform) domain.PostContent
}

// Publisher fans a post out to platforms and returns one result per
// requested platform in request order.
type Publisher interface {
	Publish(ctx context.Context, post *domain.Post, platforms []domain.Platform) []domain.PublicationResult
	SupportedPlatforms() []domain.Platform
}

// Researcher resolves a topic into a working topic plus keywords. Topics
// that are not references come back unchanged.
type Researcher interface {
	Research(ctx context.Context, topic string) (string, []string, error)
}
