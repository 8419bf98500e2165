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
	mediumBaseURL = "https://api.medium.com/v1"
	mediumMaxTags = 5
)

type Medium struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewMedium(apiKey string) *Medium {
	return &Medium{apiKey: apiKey, baseURL: mediumBaseURL, client: newHTTPClient()}
}

// WithBaseURL points the publisher at another API root.
func (m *Medium) WithBaseURL(baseURL string) *Medium {
	m.baseURL = strings.TrimRight(baseURL, "/")
	return m
}

func (m *Medium) Platform() domain.Platform { return domain.PlatformMedium }

type mediumUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type mediumPostRequest struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	PublishStatus string   `json:"publishStatus"`
	Tags          []string `json:"tags"`
}

type mediumPostResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

func (m *Medium) Publish(ctx context.Context, article Article) (*Receipt, error) {
	userID, err := m.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(mediumPostRequest{
		Title:         article.Title,
		ContentFormat: "markdown",
		Content:       article.Body,
		PublishStatus: "public",
		Tags:          limitTags(article.Tags, mediumMaxTags),
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode medium post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/users/%s/posts", m.baseURL, userID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	m.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("medium request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, responseError("Failed to publish", resp)
	}
	var out mediumPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode medium response: %w", err)
	}
	return &Receipt{PostID: out.Data.ID, URL: out.Data.URL}, nil
}

func (m *Medium) currentUserID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/me", nil)
	if err != nil {
		return "", err
	}
	m.authorize(req)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("medium request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", responseError("Failed to get user info", resp)
	}
	var user mediumUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("could not decode medium user: %w", err)
	}
	if user.Data.ID == "" {
		return "", fmt.Errorf("Failed to get user info: empty user id")
	}
	return user.Data.ID, nil
}

func (m *Medium) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Accept", "application/json")
}
