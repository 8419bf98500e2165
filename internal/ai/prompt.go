package ai

import (
	"fmt"
	"strings"

	"autoposter-bot/internal/domain"
)

const (
	defaultTitle = "Generated article"
	defaultBody  = "Content will be added later"
)

func stylePrompt(platform domain.Platform) string {
	switch platform {
	case domain.PlatformMedium:
		return "Create a professional article for Medium"
	case domain.PlatformDevTo:
		return "Create a technical article for Dev.to"
	case domain.PlatformReddit:
		return "Create an interesting post for Reddit"
	}
	return "Create an informative article"
}

func generatePrompt(topic string, platform domain.Platform) string {
	return fmt.Sprintf(`%s on the topic: "%s"

Requirements:
1. Title should be concise and attractive (up to 100 characters)
2. Article should be structured and informative
3. Length: 1000-1500 words
4. Use markdown for formatting
5. Add practical examples
6. Article should be useful and interesting

Respond in format:
TITLE: [article title]

CONTENT:
[main article text]`, stylePrompt(platform), topic)
}

func regeneratePrompt(previous domain.PostContent, platform domain.Platform) string {
	excerpt := []rune(previous.Body)
	if len(excerpt) > previousBodyExcerpt {
		excerpt = excerpt[:previousBodyExcerpt]
	}
	var style string
	if platform != "" {
		style = "\nTarget style: " + stylePrompt(platform) + "\n"
	}
	return fmt.Sprintf(`Rewrite the article on topic: "%s"
%s
Previous version:
Title: %s
Content: %s...

Requirements:
1. Create a new attractive title
2. Use a different approach to the topic
3. Add more practical examples
4. Keep structure and length
5. Make the article more interesting and dynamic

Respond in format:
TITLE: [new title]

CONTENT:
[new article text]`, previous.Topic, style, previous.Title, string(excerpt))
}

// parseResponse pulls the title and body out of a TITLE:/CONTENT: reply.
func parseResponse(text string) (string, string) {
	var title string
	var body strings.Builder
	capturing := false
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "TITLE:"):
			title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
		case strings.HasPrefix(line, "CONTENT:"):
			capturing = true
		case capturing:
			body.WriteString(line)
			body.WriteString("\n")
		}
	}

	title = truncateTitle(title)
	if title == "" {
		title = defaultTitle
	}
	content := strings.TrimSpace(body.String())
	if content == "" {
		content = defaultBody
	}
	return title, content
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > domain.MaxTitleLength {
		return strings.TrimSpace(string(runes[:domain.MaxTitleLength]))
	}
	return title
}
