package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/publisher"
	"autoposter-bot/internal/storage/memory"
	"autoposter-bot/internal/usecase"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, topic string, platform domain.Platform, tags []string) domain.PostContent {
	args := m.Called(ctx, topic, platform, tags)
	return args.Get(0).(domain.PostContent)
}

func (m *MockGenerator) Regenerate(ctx context.Context, previous domain.PostContent, platform domain.Platform) domain.PostContent {
	args := m.Called(ctx, previous, platform)
	return args.Get(0).(domain.PostContent)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, post *domain.Post, platforms []domain.Platform) []domain.PublicationResult {
	args := m.Called(ctx, post, platforms)
	return args.Get(0).([]domain.PublicationResult)
}

func (m *MockPublisher) SupportedPlatforms() []domain.Platform {
	return domain.AllPlatforms
}

type MockResearcher struct {
	mock.Mock
}

func (m *MockResearcher) Research(ctx context.Context, topic string) (string, []string, error) {
	args := m.Called(ctx, topic)
	var keywords []string
	if v := args.Get(1); v != nil {
		keywords = v.([]string)
	}
	return args.String(0), keywords, args.Error(2)
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string, domain.Platform, []string) domain.PostContent {
	panic("generator exploded")
}

func (panickingGenerator) Regenerate(context.Context, domain.PostContent, domain.Platform) domain.PostContent {
	panic("generator exploded")
}

func content(t *testing.T, title string) domain.PostContent {
	t.Helper()
	c, err := domain.NewPostContent(title, "body for "+title, "topic", []string{"go"})
	require.NoError(t, err)
	return c
}

func seedPost(t *testing.T, repo *memory.PostRepository, userID int64, status domain.Status) *domain.Post {
	t.Helper()
	now := time.Now().UTC()
	post := domain.RestorePost(uuid.New(), userID, content(t, "seeded"), status, now, now, nil)
	require.NoError(t, repo.Save(context.Background(), post))
	return post
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a draft", func(t *testing.T) {
		repo := memory.NewPostRepository()
		gen := new(MockGenerator)
		generated := content(t, "Generated")
		gen.On("Generate", mock.Anything, "golang", domain.PlatformDevTo, []string{"go"}).Return(generated)

		uc := usecase.NewCreatePost(repo, gen, nil)
		res := uc.Execute(ctx, usecase.CreatePostCommand{UserID: 5, Topic: "  golang ", Platform: domain.PlatformDevTo, Tags: []string{"go"}})

		require.True(t, res.Success, res.ErrorMessage())
		assert.Equal(t, generated, res.Content)
		stored, err := repo.GetByID(ctx, res.PostID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDraft, stored.Status())
		assert.Equal(t, int64(5), stored.UserID())
		gen.AssertExpectations(t)
	})

	t.Run("generation ignores caller cancellation", func(t *testing.T) {
		repo := memory.NewPostRepository()
		gen := new(MockGenerator)
		live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })
		gen.On("Generate", live, "golang", domain.Platform(""), []string(nil)).Return(content(t, "Generated"))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res := usecase.NewCreatePost(repo, gen, nil).Execute(cctx, usecase.CreatePostCommand{UserID: 5, Topic: "golang"})
		require.True(t, res.Success, res.ErrorMessage())
		assert.Equal(t, "Generated", res.Content.Title)
		gen.AssertExpectations(t)
	})

	t.Run("empty topic", func(t *testing.T) {
		uc := usecase.NewCreatePost(memory.NewPostRepository(), new(MockGenerator), nil)
		res := uc.Execute(ctx, usecase.CreatePostCommand{UserID: 5, Topic: "   "})
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, usecase.ErrEmptyTopic)
	})

	t.Run("research replaces topic and adds keywords", func(t *testing.T) {
		gen := new(MockGenerator)
		research := new(MockResearcher)
		research.On("Research", mock.Anything, "https://example.com/a").
			Return("Real Title", []string{"Go", "kafka", "go"}, nil)
		gen.On("Generate", mock.Anything, "Real Title", domain.Platform(""), []string{"go", "kafka"}).Return(content(t, "x"))

		uc := usecase.NewCreatePost(memory.NewPostRepository(), gen, research)
		res := uc.Execute(ctx, usecase.CreatePostCommand{UserID: 1, Topic: "https://example.com/a", Tags: []string{"go"}})
		require.True(t, res.Success)
		gen.AssertExpectations(t)
	})

	t.Run("research failure falls back to raw topic", func(t *testing.T) {
		gen := new(MockGenerator)
		research := new(MockResearcher)
		research.On("Research", mock.Anything, "https://down.example").Return("", nil, errors.New("timeout"))
		gen.On("Generate", mock.Anything, "https://down.example", domain.Platform(""), []string(nil)).Return(content(t, "x"))

		uc := usecase.NewCreatePost(memory.NewPostRepository(), gen, research)
		res := uc.Execute(ctx, usecase.CreatePostCommand{UserID: 1, Topic: "https://down.example"})
		require.True(t, res.Success)
		gen.AssertExpectations(t)
	})

	t.Run("panic becomes failed result", func(t *testing.T) {
		uc := usecase.NewCreatePost(memory.NewPostRepository(), panickingGenerator{}, nil)
		res := uc.Execute(ctx, usecase.CreatePostCommand{UserID: 1, Topic: "boom"})
		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage(), "generator exploded")
	})
}

func TestConfirmPost(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPostRepository()
	uc := usecase.NewConfirmPost(repo)

	draft := seedPost(t, repo, 1, domain.StatusDraft)

	res := uc.Execute(ctx, usecase.ConfirmPostCommand{PostID: draft.ID(), UserID: 2})
	assert.ErrorIs(t, res.Err, usecase.ErrAccessDenied)
	assert.Equal(t, "access denied", res.ErrorMessage())

	res = uc.Execute(ctx, usecase.ConfirmPostCommand{PostID: uuid.New(), UserID: 1})
	assert.ErrorIs(t, res.Err, domain.ErrPostNotFound)
	assert.Equal(t, "post not found", res.ErrorMessage())

	res = uc.Execute(ctx, usecase.ConfirmPostCommand{PostID: draft.ID(), UserID: 1})
	require.True(t, res.Success)
	stored, err := repo.GetByID(ctx, draft.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status())

	res = uc.Execute(ctx, usecase.ConfirmPostCommand{PostID: draft.ID(), UserID: 1})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrInvalidStateTransition)
}

func TestRegenerateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("draft gets new content", func(t *testing.T) {
		repo := memory.NewPostRepository()
		draft := seedPost(t, repo, 1, domain.StatusDraft)
		fresh := content(t, "Fresh")
		gen := new(MockGenerator)
		gen.On("Regenerate", mock.Anything, draft.Content(), domain.PlatformReddit).Return(fresh)

		res := usecase.NewRegenerateContent(repo, gen).Execute(ctx, usecase.RegenerateContentCommand{PostID: draft.ID(), UserID: 1, Platform: domain.PlatformReddit})
		require.True(t, res.Success)
		assert.Equal(t, fresh, res.Content)
		stored, err := repo.GetByID(ctx, draft.ID())
		require.NoError(t, err)
		assert.Equal(t, fresh, stored.Content())
	})

	t.Run("generation ignores caller cancellation", func(t *testing.T) {
		repo := memory.NewPostRepository()
		draft := seedPost(t, repo, 1, domain.StatusDraft)
		fresh := content(t, "Fresh")
		gen := new(MockGenerator)
		live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })
		gen.On("Regenerate", live, draft.Content(), domain.Platform("")).Return(fresh)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res := usecase.NewRegenerateContent(repo, gen).Execute(cctx, usecase.RegenerateContentCommand{PostID: draft.ID(), UserID: 1})
		require.True(t, res.Success, res.ErrorMessage())
		gen.AssertExpectations(t)
	})

	for _, status := range []domain.Status{domain.StatusConfirmed, domain.StatusPublished, domain.StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			repo := memory.NewPostRepository()
			post := seedPost(t, repo, 1, status)
			gen := new(MockGenerator)

			res := usecase.NewRegenerateContent(repo, gen).Execute(ctx, usecase.RegenerateContentCommand{PostID: post.ID(), UserID: 1})
			assert.False(t, res.Success)
			assert.Equal(t, "only draft posts can be regenerated", res.ErrorMessage())
			stored, err := repo.GetByID(ctx, post.ID())
			require.NoError(t, err)
			assert.Equal(t, post.Content(), stored.Content())
			gen.AssertNotCalled(t, "Regenerate", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("other user", func(t *testing.T) {
		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusDraft)
		res := usecase.NewRegenerateContent(repo, new(MockGenerator)).Execute(ctx, usecase.RegenerateContentCommand{PostID: post.ID(), UserID: 9})
		assert.ErrorIs(t, res.Err, usecase.ErrAccessDenied)
	})
}

func TestPublishPost(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("partial failure publishes", func(t *testing.T) {
		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusConfirmed)
		platforms := []domain.Platform{domain.PlatformMedium, domain.PlatformDevTo}
		results := []domain.PublicationResult{
			domain.FailedPublication(domain.PlatformMedium, "Medium API error: 401"),
			domain.SucceededPublication(domain.PlatformDevTo, "42", "https://dev.to/u/42", now),
		}
		pub := new(MockPublisher)
		pub.On("Publish", mock.Anything, mock.AnythingOfType("*domain.Post"), platforms).Return(results)

		res := usecase.NewPublishPost(repo, pub).Execute(ctx, usecase.PublishPostCommand{PostID: post.ID(), Platforms: platforms, UserID: 1})
		require.True(t, res.Success)
		assert.Equal(t, results, res.Results)

		stored, err := repo.GetByID(ctx, post.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPublished, stored.Status())
		assert.Equal(t, results, stored.Publications())
	})

	t.Run("all failures mark failed", func(t *testing.T) {
		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusConfirmed)
		results := []domain.PublicationResult{
			domain.FailedPublication(domain.PlatformMedium, "down"),
			domain.FailedPublication(domain.PlatformDevTo, "down"),
		}
		pub := new(MockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything, []domain.Platform(nil)).Return(results)

		res := usecase.NewPublishPost(repo, pub).Execute(ctx, usecase.PublishPostCommand{PostID: post.ID()})
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, usecase.ErrPublishFailed)
		assert.Len(t, res.Results, 2)

		stored, err := repo.GetByID(ctx, post.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, stored.Status())
		assert.Len(t, stored.Publications(), 2)
	})

	t.Run("draft must be confirmed first", func(t *testing.T) {
		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusDraft)
		pub := new(MockPublisher)

		res := usecase.NewPublishPost(repo, pub).Execute(ctx, usecase.PublishPostCommand{PostID: post.ID(), UserID: 1})
		assert.False(t, res.Success)
		assert.Equal(t, "post must be confirmed before publishing", res.ErrorMessage())
		stored, err := repo.GetByID(ctx, post.ID())
		require.NoError(t, err)
		assert.Empty(t, stored.Publications())
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ownership only checked with a user", func(t *testing.T) {
		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusConfirmed)
		pub := new(MockPublisher)

		res := usecase.NewPublishPost(repo, pub).Execute(ctx, usecase.PublishPostCommand{PostID: post.ID(), UserID: 2})
		assert.ErrorIs(t, res.Err, usecase.ErrAccessDenied)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no resolved platforms keeps post confirmed", func(t *testing.T) {
		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusConfirmed)

		res := usecase.NewPublishPost(repo, publisher.NewMultiPlatform(nil)).Execute(ctx, usecase.PublishPostCommand{PostID: post.ID(), UserID: 1})
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, usecase.ErrNoPlatforms)
		assert.Empty(t, res.Results)

		stored, err := repo.GetByID(ctx, post.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, stored.Status())
		assert.Empty(t, stored.Publications())
	})

	t.Run("caller cancellation does not abort a started publish", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":7,"url":"https://dev.to/u/7"}`))
		}))
		defer srv.Close()

		repo := memory.NewPostRepository()
		post := seedPost(t, repo, 1, domain.StatusConfirmed)
		fanOut := publisher.NewMultiPlatform([]domain.Platform{domain.PlatformDevTo}, publisher.NewDevTo("key").WithBaseURL(srv.URL))

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		res := usecase.NewPublishPost(repo, fanOut).Execute(cctx, usecase.PublishPostCommand{PostID: post.ID(), UserID: 1})
		require.True(t, res.Success, res.ErrorMessage())
		require.Len(t, res.Results, 1)
		assert.Equal(t, "https://dev.to/u/7", res.Results[0].URL)

		stored, err := repo.GetByID(ctx, post.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPublished, stored.Status())
	})

	t.Run("unknown post", func(t *testing.T) {
		res := usecase.NewPublishPost(memory.NewPostRepository(), new(MockPublisher)).Execute(ctx, usecase.PublishPostCommand{PostID: uuid.New()})
		assert.ErrorIs(t, res.Err, domain.ErrPostNotFound)
	})
}

func TestDeleteAndListPosts(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPostRepository()
	mine := seedPost(t, repo, 1, domain.StatusDraft)
	seedPost(t, repo, 2, domain.StatusDraft)

	list := usecase.NewListPosts(repo).Execute(ctx, 1)
	require.True(t, list.Success)
	require.Len(t, list.Posts, 1)

	del := usecase.NewDeletePost(repo)
	assert.ErrorIs(t, del.Execute(ctx, usecase.DeletePostCommand{PostID: mine.ID(), UserID: 2}).Err, usecase.ErrAccessDenied)
	require.True(t, del.Execute(ctx, usecase.DeletePostCommand{PostID: mine.ID(), UserID: 1}).Success)
	assert.ErrorIs(t, del.Execute(ctx, usecase.DeletePostCommand{PostID: mine.ID(), UserID: 1}).Err, domain.ErrPostNotFound)

	list = usecase.NewListPosts(repo).Execute(ctx, 1)
	require.True(t, list.Success)
	assert.Empty(t, list.Posts)
}

func TestPublishConfirmed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPostRepository()
	good := seedPost(t, repo, 1, domain.StatusConfirmed)
	bad := seedPost(t, repo, 2, domain.StatusConfirmed)
	seedPost(t, repo, 3, domain.StatusDraft)

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool { return p.ID() == good.ID() }), []domain.Platform(nil)).
		Return([]domain.PublicationResult{domain.SucceededPublication(domain.PlatformMedium, "m1", "https://medium.com/p/m1", time.Now())})
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool { return p.ID() == bad.ID() }), []domain.Platform(nil)).
		Return([]domain.PublicationResult{domain.FailedPublication(domain.PlatformMedium, "nope")})

	ucs := usecase.New(repo, new(MockGenerator), pub, nil)
	res := ucs.PublishConfirmed.Execute(ctx, nil)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 1, res.Failed)

	remaining, err := repo.GetConfirmedPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	pub.AssertExpectations(t)
}
