package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoposter-bot/internal/domain"
)

func newTestRepository(t *testing.T) *PostRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres tests")
	}
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	ctx := context.Background()
	repo, err := Connect(ctx, url)
	require.NoError(t, err)
	_, err = repo.pool.Exec(ctx, "TRUNCATE posts CASCADE")
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func TestPostRepository_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	content, err := domain.NewPostContent("Title", "Body", "topic", []string{"go", "pgx"})
	require.NoError(t, err)
	post := domain.NewPost(uuid.New(), 3, content)
	require.NoError(t, repo.Save(ctx, post))

	require.NoError(t, post.Confirm())
	require.NoError(t, post.RecordPublications(
		domain.FailedPublication(domain.PlatformReddit, "Failed to get Reddit access token"),
		domain.SucceededPublication(domain.PlatformMedium, "m", "https://medium.com/p/m", time.Now()),
	))
	require.NoError(t, post.MarkPublished())
	require.NoError(t, repo.Save(ctx, post))

	got, err := repo.GetByID(ctx, post.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status())
	assert.Equal(t, []string{"go", "pgx"}, got.Content().Tags)
	pubs := got.Publications()
	require.Len(t, pubs, 2)
	assert.Equal(t, domain.PlatformReddit, pubs[0].Platform)
	assert.Equal(t, "m", pubs[1].PlatformPostID)
	assert.WithinDuration(t, post.CreatedAt(), got.CreatedAt(), time.Millisecond)

	byUser, err := repo.GetByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	require.NoError(t, repo.Delete(ctx, post.ID()))
	_, err = repo.GetByID(ctx, post.ID())
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, post.ID()), domain.ErrPostNotFound)
}

func TestPostRepository_ConfirmedNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		content, err := domain.NewPostContent("T", "B", "x", nil)
		require.NoError(t, err)
		at := base.Add(time.Duration(i) * time.Minute)
		post := domain.RestorePost(uuid.New(), 1, content, domain.StatusConfirmed, at, at, nil)
		require.NoError(t, repo.Save(ctx, post))
		ids = append(ids, post.ID())
	}

	confirmed, err := repo.GetConfirmedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, confirmed, 3)
	assert.Equal(t, ids[2], confirmed[0].ID())
	assert.Equal(t, ids[0], confirmed[2].ID())
}

func TestPostRepository_UnknownStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	content, err := domain.NewPostContent("T", "B", "x", nil)
	require.NoError(t, err)
	post := domain.NewPost(uuid.New(), 1, content)
	require.NoError(t, repo.Save(ctx, post))
	_, err = repo.pool.Exec(ctx, "UPDATE posts SET status = 'archived' WHERE id = $1", post.ID())
	require.NoError(t, err)

	_, err = repo.GetByUserID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}
