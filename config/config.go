package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

const (
	SessionStoreMemory   = "memory"
	SessionStoreDatabase = "database"
	DatabaseMemory       = "memory"
)

type Config struct {
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"     required:"true"`
	GeminiModel      string `envconfig:"GEMINI_MODEL"       default:"gemini-1.5-flash"`

	DatabaseURL    string `envconfig:"DATABASE_URL"     default:"autoposter.db"`
	SessionStore   string `envconfig:"SESSION_STORE"    default:"memory"`
	HTTPAddr       string `envconfig:"HTTP_ADDR"        default:":8000"`
	WebhookBaseURL string `envconfig:"WEBHOOK_BASE_URL"`

	MediumAPIKey string `envconfig:"MEDIUM_API_KEY"`
	DevToAPIKey  string `envconfig:"DEV_TO_API_KEY"`

	RedditClientID     string `envconfig:"REDDIT_CLIENT_ID"`
	RedditClientSecret string `envconfig:"REDDIT_CLIENT_SECRET"`
	RedditUsername     string `envconfig:"REDDIT_USERNAME"`
	RedditPassword     string `envconfig:"REDDIT_PASSWORD"`
	RedditSubreddit    string `envconfig:"REDDIT_SUBREDDIT"   default:"test"`
	RedditUserAgent    string `envconfig:"REDDIT_USER_AGENT"  default:"AutoPoster/1.0"`

	DefaultPlatforms           []string `envconfig:"DEFAULT_PLATFORMS"             default:"medium,dev_to"`
	AutoPublishIntervalMinutes int      `envconfig:"AUTO_PUBLISH_INTERVAL_MINUTES" default:"0"`
	TopicFeedURLs              []string `envconfig:"TOPIC_FEED_URLS"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en"`
	LogLevel        string `envconfig:"LOG_LEVEL"        default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT"       default:"text"`
	Debug           bool   `envconfig:"DEBUG"            default:"false"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Component("config").Debug("No .env file found, reading from environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	platforms, err := c.DefaultPlatformList()
	if err != nil {
		return fmt.Errorf("invalid DEFAULT_PLATFORMS: %w", err)
	}
	if len(platforms) == 0 {
		return fmt.Errorf("DEFAULT_PLATFORMS cannot be empty")
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreDatabase:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q: want %q or %q", c.SessionStore, SessionStoreMemory, SessionStoreDatabase)
	}
	if c.SessionStore == SessionStoreDatabase && !c.UsesSQLite() {
		return fmt.Errorf("SESSION_STORE=%s requires the SQLite backend", SessionStoreDatabase)
	}
	if c.AutoPublishIntervalMinutes < 0 {
		return fmt.Errorf("AUTO_PUBLISH_INTERVAL_MINUTES cannot be negative")
	}
	return nil
}

func (c Config) DefaultPlatformList() ([]domain.Platform, error) {
	return domain.ParsePlatforms(c.DefaultPlatforms)
}

func (c Config) AutoPublishInterval() time.Duration {
	return time.Duration(c.AutoPublishIntervalMinutes) * time.Minute
}

func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func (c Config) UsesMemory() bool {
	return c.DatabaseURL == DatabaseMemory
}

func (c Config) UsesSQLite() bool {
	return !c.UsesPostgres() && !c.UsesMemory()
}

func (c Config) RedditConfigured() bool {
	return c.RedditClientID != ""
}

// WebhookURL is where Telegram should deliver updates, empty for polling.
func (c Config) WebhookURL() string {
	if c.WebhookBaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.WebhookBaseURL, "/") + WebhookPath
}

const WebhookPath = "/api/v1/telegram/webhook"
