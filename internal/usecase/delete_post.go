package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

type DeletePostCommand struct {
	PostID uuid.UUID
	UserID int64
}

type DeletePost struct {
	repo PostRepository
	log  *logrus.Entry
}

func NewDeletePost(repo PostRepository) *DeletePost {
	return &DeletePost{repo: repo, log: logger.Component("usecase.delete_post")}
}

func (uc *DeletePost) Execute(ctx context.Context, cmd DeletePostCommand) (res Result) {
	defer recoverAs(uc.log, "post deletion", func(err error) { res = failed(err) })

	if _, err := loadOwnedPost(ctx, uc.repo, cmd.PostID, cmd.UserID, true); err != nil {
		return failed(err)
	}
	if err := uc.repo.Delete(ctx, cmd.PostID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return failed(domain.ErrPostNotFound)
		}
		return failed(fmt.Errorf("failed to delete post: %w", err))
	}
	uc.log.WithFields(logrus.Fields{"post_id": cmd.PostID, "user_id": cmd.UserID}).Info("Post deleted")
	return ok()
}
