package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

type PublishConfirmedResult struct {
	Result
	Published int
	Failed    int
}

// PublishConfirmed publishes every post waiting in Confirmed.
type PublishConfirmed struct {
	repo    PostRepository
	publish *PublishPost
	log     *logrus.Entry
}

func NewPublishConfirmed(repo PostRepository, publish *PublishPost) *PublishConfirmed {
	return &PublishConfirmed{repo: repo, publish: publish, log: logger.Component("usecase.publish_confirmed")}
}

func (uc *PublishConfirmed) Execute(ctx context.Context, platforms []domain.Platform) (res PublishConfirmedResult) {
	defer recoverAs(uc.log, "batch publishing", func(err error) { res = PublishConfirmedResult{Result: failed(err)} })

	posts, err := uc.repo.GetConfirmedPosts(ctx)
	if err != nil {
		uc.log.WithError(err).Error("Failed to load confirmed posts")
		return PublishConfirmedResult{Result: failed(fmt.Errorf("failed to load confirmed posts: %w", err))}
	}

	res = PublishConfirmedResult{Result: ok()}
	for _, post := range posts {
		if ctx.Err() != nil {
			break
		}
		out := uc.publish.Execute(ctx, PublishPostCommand{PostID: post.ID(), Platforms: platforms})
		if out.Success {
			res.Published++
		} else {
			res.Failed++
		}
	}
	if len(posts) > 0 {
		uc.log.WithFields(logrus.Fields{"published": res.Published, "failed": res.Failed}).Info("Confirmed posts processed")
	}
	return res
}
