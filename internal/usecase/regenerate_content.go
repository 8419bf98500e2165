package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

type RegenerateContentCommand struct {
	PostID   uuid.UUID
	UserID   int64
	Platform domain.Platform
}

type RegenerateContentResult struct {
	Result
	Content domain.PostContent
}

type RegenerateContent struct {
	repo      PostRepository
	generator ContentGenerator
	log       *logrus.Entry
}

func NewRegenerateContent(repo PostRepository, generator ContentGenerator) *RegenerateContent {
	return &RegenerateContent{repo: repo, generator: generator, log: logger.Component("usecase.regenerate_content")}
}

func (uc *RegenerateContent) Execute(ctx context.Context, cmd RegenerateContentCommand) (res RegenerateContentResult) {
	defer recoverAs(uc.log, "content regeneration", func(err error) { res = RegenerateContentResult{Result: failed(err)} })
	ctx = context.WithoutCancel(ctx)

	post, err := loadOwnedPost(ctx, uc.repo, cmd.PostID, cmd.UserID, true)
	if err != nil {
		return RegenerateContentResult{Result: failed(err)}
	}
	if post.Status() != domain.StatusDraft {
		return RegenerateContentResult{Result: failed(ErrNotDraft)}
	}

	content := uc.generator.Regenerate(ctx, post.Content(), cmd.Platform)
	if err := post.UpdateContent(content); err != nil {
		return RegenerateContentResult{Result: failed(err)}
	}
	if err := uc.repo.Save(ctx, post); err != nil {
		uc.log.WithError(err).WithField("post_id", cmd.PostID).Error("Failed to save regenerated post")
		return RegenerateContentResult{Result: failed(fmt.Errorf("failed to save post: %w", err))}
	}
	uc.log.WithFields(logrus.Fields{"post_id": cmd.PostID, "platform": cmd.Platform}).Info("Content regenerated")
	return RegenerateContentResult{Result: ok(), Content: post.Content()}
}
