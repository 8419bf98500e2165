package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"autoposter-bot/internal/domain"
)

const (
	devToBaseURL = "https://dev.to/api"
	devToMaxTags = 4
)

type DevTo struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewDevTo(apiKey string) *DevTo {
	return &DevTo{apiKey: apiKey, baseURL: devToBaseURL, client: newHTTPClient()}
}

func (d *DevTo) WithBaseURL(baseURL string) *DevTo {
	d.baseURL = strings.TrimRight(baseURL, "/")
	return d
}

func (d *DevTo) Platform() domain.Platform { return domain.PlatformDevTo }

type devToArticle struct {
	Title        string   `json:"title"`
	BodyMarkdown string   `json:"body_markdown"`
	Published    bool     `json:"published"`
	Tags         []string `json:"tags"`
}

type devToRequest struct {
	Article devToArticle `json:"article"`
}

type devToResponse struct {
	ID  json.Number `json:"id"`
	URL string      `json:"url"`
}

func (d *DevTo) Publish(ctx context.Context, article Article) (*Receipt, error) {
	payload, err := json.Marshal(devToRequest{Article: devToArticle{
		Title:        article.Title,
		BodyMarkdown: article.Body,
		Published:    true,
		Tags:         limitTags(article.Tags, devToMaxTags),
	}})
	if err != nil {
		return nil, fmt.Errorf("could not encode dev.to article: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/articles", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dev.to request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, responseError("Failed to publish", resp)
	}
	var out devToResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode dev.to response: %w", err)
	}
	return &Receipt{PostID: out.ID.String(), URL: out.URL}, nil
}
