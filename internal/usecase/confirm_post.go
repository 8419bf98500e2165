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

type ConfirmPostCommand struct {
	PostID uuid.UUID
	UserID int64
}

type ConfirmPost struct {
	repo PostRepository
	log  *logrus.Entry
}

func NewConfirmPost(repo PostRepository) *ConfirmPost {
	return &ConfirmPost{repo: repo, log: logger.Component("usecase.confirm_post")}
}

func (uc *ConfirmPost) Execute(ctx context.Context, cmd ConfirmPostCommand) (res Result) {
	defer recoverAs(uc.log, "post confirmation", func(err error) { res = failed(err) })

	post, err := loadOwnedPost(ctx, uc.repo, cmd.PostID, cmd.UserID, true)
	if err != nil {
		return failed(err)
	}
	if err := post.Confirm(); err != nil {
		return failed(err)
	}
	if err := uc.repo.Save(ctx, post); err != nil {
		uc.log.WithError(err).WithField("post_id", cmd.PostID).Error("Failed to save confirmed post")
		return failed(fmt.Errorf("failed to save post: %w", err))
	}
	uc.log.WithFields(logrus.Fields{"post_id": cmd.PostID, "user_id": cmd.UserID}).Info("Post confirmed")
	return ok()
}

// loadOwnedPost fetches a post and, when checkOwner is set, rejects
// other users' posts.
func loadOwnedPost(ctx context.Context, repo PostRepository, id uuid.UUID, userID int64, checkOwner bool) (*domain.Post, error) {
	post, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if checkOwner && !post.OwnedBy(userID) {
		return nil, ErrAccessDenied
	}
	return post, nil
}
