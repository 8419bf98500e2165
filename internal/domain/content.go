package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxTitleLength = 200

// PostContent is the generated article. Build it with NewPostContent so the
// title and body constraints always hold.
type PostContent struct {
	Title string
	Body  string
	Topic string
	Tags  []string
}

func NewPostContent(title, body, topic string, tags []string) (PostContent, error) {
	if strings.TrimSpace(title) == "" {
		return PostContent{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidContent)
	}
	if strings.TrimSpace(body) == "" {
		return PostContent{}, fmt.Errorf("%w: body cannot be empty", ErrInvalidContent)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return PostContent{}, fmt.Errorf("%w: title longer than %d characters", ErrInvalidContent, MaxTitleLength)
	}
	return PostContent{
		Title: title,
		Body:  body,
		Topic: topic,
		Tags:  cloneTags(tags),
	}, nil
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
