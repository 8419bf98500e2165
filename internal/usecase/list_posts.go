package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

type ListPostsResult struct {
	Result
	Posts []*domain.Post
}

type ListPosts struct {
	repo PostRepository
	log  *logrus.Entry
}

func NewListPosts(repo PostRepository) *ListPosts {
	return &ListPosts{repo: repo, log: logger.Component("usecase.list_posts")}
}

// Execute returns the user's posts, newest first.
func (uc *ListPosts) Execute(ctx context.Context, userID int64) (res ListPostsResult) {
	defer recoverAs(uc.log, "listing posts", func(err error) { res = ListPostsResult{Result: failed(err)} })

	posts, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		uc.log.WithError(err).WithField("user_id", userID).Error("Failed to list posts")
		return ListPostsResult{Result: failed(fmt.Errorf("failed to list posts: %w", err))}
	}
	return ListPostsResult{Result: ok(), Posts: posts}
}
