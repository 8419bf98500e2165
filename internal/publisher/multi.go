package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

// MultiPlatform publishes a post to several platforms one after another.
// A failing platform never stops the rest.
type MultiPlatform struct {
	publishers map[domain.Platform]PlatformPublisher
	order      []domain.Platform
	defaults   []domain.Platform
	now        func() time.Time
	log        *logrus.Entry
}

// NewMultiPlatform registers publishers; a later publisher for the same
// platform replaces an earlier one. defaults is used when Publish is called
// with no platforms.
func NewMultiPlatform(defaults []domain.Platform, publishers ...PlatformPublisher) *MultiPlatform {
	m := &MultiPlatform{
		publishers: make(map[domain.Platform]PlatformPublisher),
		defaults:   append([]domain.Platform(nil), defaults...),
		now:        time.Now,
		log:        logger.Component("publisher"),
	}
	for _, p := range publishers {
		if _, seen := m.publishers[p.Platform()]; !seen {
			m.order = append(m.order, p.Platform())
		}
		m.publishers[p.Platform()] = p
	}
	return m
}

func (m *MultiPlatform) SupportedPlatforms() []domain.Platform {
	return append([]domain.Platform(nil), m.order...)
}

func (m *MultiPlatform) Publish(ctx context.Context, post *domain.Post, platforms []domain.Platform) []domain.PublicationResult {
	if len(platforms) == 0 {
		platforms = m.defaults
	}
	content := post.Content()
	article := Article{Title: content.Title, Body: content.Body, Tags: content.Tags}
	log := m.log.WithField("post_id", post.ID())
	log.WithField("platforms", platforms).Info("Publishing post")

	results := make([]domain.PublicationResult, 0, len(platforms))
	for _, platform := range platforms {
		entry := log.WithField("platform", platform)
		p, ok := m.publishers[platform]
		if !ok {
			msg := fmt.Sprintf("Publisher for %s not configured", platform)
			entry.Warn(msg)
			results = append(results, domain.FailedPublication(platform, msg))
			continue
		}

		receipt, err := m.publishOne(ctx, p, article)
		if err != nil {
			entry.WithError(err).Error("Failed to publish")
			results = append(results, domain.FailedPublication(platform, err.Error()))
			continue
		}
		entry.WithField("url", receipt.URL).Info("Successfully published")
		results = append(results, domain.SucceededPublication(platform, receipt.PostID, receipt.URL, m.now()))
	}
	return results
}

func (m *MultiPlatform) publishOne(ctx context.Context, p PlatformPublisher, article Article) (receipt *Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			receipt, err = nil, fmt.Errorf("publisher panicked: %v", r)
		}
	}()
	receipt, err = p.Publish(ctx, article)
	if err == nil && receipt == nil {
		err = fmt.Errorf("publisher returned no result")
	}
	return receipt, err
}
