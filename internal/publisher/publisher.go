package publisher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autoposter-bot/internal/domain"
)

const (
	requestTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Article is what a platform receives. Platforms apply their own tag limits.
type Article struct {
	Title string
	Body  string
	Tags  []string
}

// Receipt identifies a post created on a platform.
type Receipt struct {
	PostID string
	URL    string
}

// PlatformPublisher posts one article to one platform.
type PlatformPublisher interface {
	Platform() domain.Platform
	Publish(ctx context.Context, article Article) (*Receipt, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// responseError reads a short excerpt of an unexpected response.
func responseError(prefix string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = resp.Status
	}
	return fmt.Errorf("%s: %s", prefix, text)
}

func limitTags(tags []string, max int) []string {
	if len(tags) > max {
		tags = tags[:max]
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
