package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

type PublishPostCommand struct {
	PostID uuid.UUID
	// Platforms empty means the publisher's defaults.
	Platforms []domain.Platform
	// UserID zero skips the ownership check.
	UserID int64
}

type PublishPostResult struct {
	Result
	Results []domain.PublicationResult
}

type PublishPost struct {
	repo      PostRepository
	publisher Publisher
	log       *logrus.Entry
}

func NewPublishPost(repo PostRepository, publisher Publisher) *PublishPost {
	return &PublishPost{repo: repo, publisher: publisher, log: logger.Component("usecase.publish_post")}
}

func (uc *PublishPost) Execute(ctx context.Context, cmd PublishPostCommand) (res PublishPostResult) {
	defer recoverAs(uc.log, "publishing", func(err error) { res = PublishPostResult{Result: failed(err)} })
	// Once started, a publish runs to completion even if the caller is cancelled.
	ctx = context.WithoutCancel(ctx)

	post, err := loadOwnedPost(ctx, uc.repo, cmd.PostID, cmd.UserID, cmd.UserID != 0)
	if err != nil {
		return PublishPostResult{Result: failed(err)}
	}
	if post.Status() != domain.StatusConfirmed {
		return PublishPostResult{Result: failed(ErrNotConfirmed)}
	}

	log := uc.log.WithField("post_id", post.ID())
	results := uc.publisher.Publish(ctx, post, cmd.Platforms)
	if len(results) == 0 {
		log.Warn("No platforms resolved for publishing")
		return PublishPostResult{Result: failed(ErrNoPlatforms)}
	}
	if err := post.RecordPublications(results...); err != nil {
		return PublishPostResult{Result: failed(err), Results: results}
	}

	succeeded := domain.AnySucceeded(results)
	if succeeded {
		err = post.MarkPublished()
	} else {
		err = post.MarkFailed(ErrPublishFailed.Error())
	}
	if err != nil {
		return PublishPostResult{Result: failed(err), Results: results}
	}

	if err := uc.repo.Save(ctx, post); err != nil {
		log.WithError(err).Error("Failed to save publication results")
		return PublishPostResult{Result: failed(fmt.Errorf("failed to save post: %w", err)), Results: results}
	}

	for _, r := range results {
		entry := log.WithField("platform", r.Platform)
		if r.Success {
			entry.WithField("url", r.URL).Info("Published")
		} else {
			entry.WithField("error", r.ErrorMessage).Warn("Publication failed")
		}
	}

	if !succeeded {
		return PublishPostResult{Result: failed(ErrPublishFailed), Results: results}
	}
	return PublishPostResult{Result: ok(), Results: results}
}
