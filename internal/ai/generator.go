package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
)

const (
	DefaultModel = "gemini-1.5-flash"

	systemInstruction     = "You are an experienced technical writer and blogger. You create quality content."
	generateTemperature   = 0.7
	regenerateTemperature = 0.8
	maxOutputTokens       = 2000
	previousBodyExcerpt   = 500
)

// textModel is the part of *genai.GenerativeModel the generator uses.
type textModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Generator writes articles with Gemini. Backend failures never surface to
// callers; they get deterministic fallback content instead.
type Generator struct {
	client     *genai.Client
	generate   textModel
	regenerate textModel
	log        *logrus.Entry
}

func NewGenerator(ctx context.Context, apiKey, modelName string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Generator{
		client:     client,
		generate:   newModel(client, modelName, generateTemperature),
		regenerate: newModel(client, modelName, regenerateTemperature),
		log:        logger.Component("ai"),
	}, nil
}

func newModel(client *genai.Client, name string, temperature float32) *genai.GenerativeModel {
	model := client.GenerativeModel(name)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxOutputTokens)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	return model
}

func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Generator) Generate(ctx context.Context, topic string, platform domain.Platform, tags []string) domain.PostContent {
	log := g.log.WithFields(logrus.Fields{"topic": topic, "platform": platform})
	log.Info("Generating content")

	text, err := g.complete(ctx, g.generate, generatePrompt(topic, platform))
	if err == nil {
		title, body := parseResponse(text)
		content, cerr := domain.NewPostContent(title, body, topic, tags)
		if cerr == nil {
			return content
		}
		err = cerr
	}
	log.WithError(err).Error("AI generation failed, using fallback content")
	return fallbackContent(
		"Article on topic: "+topic,
		fmt.Sprintf("# %s\n\nArticle on topic '%s' will be created later.", topic, topic),
		topic, tags,
	)
}

func (g *Generator) Regenerate(ctx context.Context, previous domain.PostContent, platform domain.Platform) domain.PostContent {
	log := g.log.WithFields(logrus.Fields{"topic": previous.Topic, "platform": platform})
	log.Info("Regenerating content")

	text, err := g.complete(ctx, g.regenerate, regeneratePrompt(previous, platform))
	if err == nil {
		title, body := parseResponse(text)
		content, cerr := domain.NewPostContent(title, body, previous.Topic, previous.Tags)
		if cerr == nil {
			return content
		}
		err = cerr
	}
	log.WithError(err).Error("AI regeneration failed, using fallback content")
	return fallbackContent(
		"Updated article: "+previous.Topic,
		fmt.Sprintf("# Updated article: %s\n\n%s", previous.Topic, previous.Body),
		previous.Topic, previous.Tags,
	)
}

func (g *Generator) complete(ctx context.Context, model textModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("received an empty response from AI")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from AI")
	}
	return sb.String(), nil
}

// fallbackContent builds content directly so an over-long topic cannot
// make the fallback itself invalid.
func fallbackContent(title, body, topic string, tags []string) domain.PostContent {
	content, err := domain.NewPostContent(truncateTitle(title), body, topic, tags)
	if err != nil {
		return domain.PostContent{Title: truncateTitle(title), Body: body, Topic: topic, Tags: append([]string(nil), tags...)}
	}
	return content
}
