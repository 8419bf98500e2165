package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"autoposter-bot/internal/domain"
)

const (
	redditTokenURL         = "https://www.reddit.com/api/v1/access_token"
	redditBaseURL          = "https://oauth.reddit.com"
	defaultRedditSubreddit = "test"
	defaultRedditUserAgent = "AutoPoster/1.0"
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Subreddit    string
	UserAgent    string
}

// Reddit submits self posts using the password grant of a script app.
type Reddit struct {
	cfg     RedditConfig
	oauth   *oauth2.Config
	baseURL string
	client  *http.Client
}

func NewReddit(cfg RedditConfig) *Reddit {
	if cfg.Subreddit == "" {
		cfg.Subreddit = defaultRedditSubreddit
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultRedditUserAgent
	}
	r := &Reddit{
		cfg:     cfg,
		baseURL: redditBaseURL,
	}
	r.client = &http.Client{
		Timeout:   requestTimeout,
		Transport: &userAgentTransport{agent: cfg.UserAgent, next: http.DefaultTransport},
	}
	r.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  redditTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	return r
}

// WithEndpoints overrides the token URL and the API root.
func (r *Reddit) WithEndpoints(tokenURL, baseURL string) *Reddit {
	r.oauth.Endpoint.TokenURL = tokenURL
	r.baseURL = strings.TrimRight(baseURL, "/")
	return r
}

func (r *Reddit) Platform() domain.Platform { return domain.PlatformReddit }

type redditSubmitResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

func (r *Reddit) Publish(ctx context.Context, article Article) (*Receipt, error) {
	token, err := r.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("sr", r.cfg.Subreddit)
	form.Set("kind", "self")
	form.Set("title", article.Title)
	form.Set("text", article.Body)
	form.Set("api_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/submit", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	token.SetAuthHeader(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("Failed to publish", resp)
	}
	var out redditSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode reddit response: %w", err)
	}
	if len(out.JSON.Errors) > 0 {
		return nil, fmt.Errorf("reddit rejected the submission: %v", out.JSON.Errors)
	}
	return &Receipt{PostID: out.JSON.Data.ID, URL: out.JSON.Data.URL}, nil
}

func (r *Reddit) accessToken(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	token, err := r.oauth.PasswordCredentialsToken(ctx, r.cfg.Username, r.cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("Failed to get Reddit access token: %w", err)
	}
	return token, nil
}

// userAgentTransport stamps every request with the configured agent.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(req)
}
