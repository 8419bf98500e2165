package domain

import (
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformMedium Platform = "medium"
	PlatformDevTo  Platform = "dev_to"
	PlatformReddit Platform = "reddit"
)

var AllPlatforms = []Platform{PlatformMedium, PlatformDevTo, PlatformReddit}

func ParsePlatform(name string) (Platform, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "medium":
		return PlatformMedium, nil
	case "dev_to", "devto", "dev.to":
		return PlatformDevTo, nil
	case "reddit":
		return PlatformReddit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}

func ParsePlatforms(names []string) ([]Platform, error) {
	platforms := make([]Platform, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// DisplayName is the human facing platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformMedium:
		return "Medium"
	case PlatformDevTo:
		return "Dev.to"
	case PlatformReddit:
		return "Reddit"
	}
	return string(p)
}

// PublicationResult records one publish attempt on one platform.
type PublicationResult struct {
	Platform       Platform
	Success        bool
	PlatformPostID string
	URL            string
	ErrorMessage   string
	PublishedAt    *time.Time
}

func SucceededPublication(platform Platform, postID, url string, at time.Time) PublicationResult {
	at = at.UTC()
	return PublicationResult{
		Platform:       platform,
		Success:        true,
		PlatformPostID: postID,
		URL:            url,
		PublishedAt:    &at,
	}
}

func FailedPublication(platform Platform, message string) PublicationResult {
	return PublicationResult{
		Platform:     platform,
		Success:      false,
		ErrorMessage: message,
	}
}

// AnySucceeded reports whether at least one result is a success.
func AnySucceeded(results []PublicationResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
