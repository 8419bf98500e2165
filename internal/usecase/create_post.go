package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

const maxResearchKeywords = 5

type CreatePostCommand struct {
	UserID   int64
	Topic    string
	Platform domain.Platform
	Tags     []string
}

type CreatePostResult struct {
	Result
	PostID  uuid.UUID
	Content domain.PostContent
}

type CreatePost struct {
	repo       PostRepository
	generator  ContentGenerator
	researcher Researcher
	log        *logrus.Entry
}

// NewCreatePost builds the use case. researcher may be nil.
func NewCreatePost(repo PostRepository, generator ContentGenerator, researcher Researcher) *CreatePost {
	return &CreatePost{
		repo:       repo,
		generator:  generator,
		researcher: researcher,
		log:        logger.Component("usecase.create_post"),
	}
}

func (uc *CreatePost) Execute(ctx context.Context, cmd CreatePostCommand) (res CreatePostResult) {
	defer recoverAs(uc.log, "post creation", func(err error) { res = CreatePostResult{Result: failed(err)} })
	ctx = context.WithoutCancel(ctx)

	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		return CreatePostResult{Result: failed(ErrEmptyTopic)}
	}
	log := uc.log.WithFields(logrus.Fields{"user_id": cmd.UserID, "platform": cmd.Platform})

	tags := append([]string(nil), cmd.Tags...)
	if uc.researcher != nil {
		researched, keywords, err := uc.researcher.Research(ctx, topic)
		if err != nil {
			log.WithError(err).Warn("Reference research failed, using the raw topic")
		} else {
			if strings.TrimSpace(researched) != "" {
				topic = researched
			}
			tags = mergeTags(tags, keywords, maxResearchKeywords)
		}
	}

	content := uc.generator.Generate(ctx, topic, cmd.Platform, tags)
	post := domain.NewPost(uuid.New(), cmd.UserID, content)
	if err := uc.repo.Save(ctx, post); err != nil {
		log.WithError(err).Error("Failed to save new post")
		return CreatePostResult{Result: failed(fmt.Errorf("failed to save post: %w", err))}
	}

	log.WithField("post_id", post.ID()).Info("Draft post created")
	return CreatePostResult{Result: ok(), PostID: post.ID(), Content: post.Content()}
}

// mergeTags appends at most limit extra tags not already present.
func mergeTags(tags, extra []string, limit int) []string {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		seen[strings.ToLower(t)] = true
	}
	added := 0
	for _, t := range extra {
		if added >= limit {
			break
		}
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, key)
		added++
	}
	return tags
}
