package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
)

// PostRepository keeps posts in a map. Posts are cloned on the way in and
// out so callers never share aggregates.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*domain.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[uuid.UUID]*domain.Post)}
}

func (r *PostRepository) Save(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID()] = post.Clone()
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return post.Clone(), nil
}

func (r *PostRepository) GetByUserID(_ context.Context, userID int64) ([]*domain.Post, error) {
	return r.filter(func(p *domain.Post) bool { return p.UserID() == userID }), nil
}

func (r *PostRepository) GetByStatus(_ context.Context, status domain.Status) ([]*domain.Post, error) {
	return r.filter(func(p *domain.Post) bool { return p.Status() == status }), nil
}

func (r *PostRepository) GetConfirmedPosts(ctx context.Context) ([]*domain.Post, error) {
	return r.GetByStatus(ctx, domain.StatusConfirmed)
}

func (r *PostRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) filter(match func(*domain.Post) bool) []*domain.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Post, 0)
	for _, p := range r.posts {
		if match(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].CreatedAt(), out[j].CreatedAt()
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}
