package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/session"
	"autoposter-bot/internal/usecase"
)

func (b *TelegramBot) handleStatefulMessage(ctx context.Context, message *tgbotapi.Message, state session.State) {
	switch state.Step {
	case session.StepAwaitingTopic:
		b.handleTopicInput(ctx, message, state)
	default:
		logger.WithContext(ctx).WithField("step", state.Step).Warn("Unknown conversation step, resetting")
		if err := b.sessions.Clear(ctx, message.From.ID); err != nil {
			logger.WithContext(ctx).WithError(err).Error("Failed to clear session")
		}
		b.sendText(message.Chat.ID, b.text("text_hint"), nil)
	}
}

func (b *TelegramBot) handleTopicInput(ctx context.Context, message *tgbotapi.Message, state session.State) {
	chatID := message.Chat.ID
	userID := message.From.ID
	topic, tags := splitTopic(message.Text)
	if topic == "" {
		b.sendText(chatID, b.text("empty_topic"), nil)
		return
	}

	state.Step = session.StepIdle
	if err := b.sessions.Set(ctx, userID, state); err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to update session")
	}

	waitMsg, _ := b.sendText(chatID, b.format("generating", escape(topic)), nil)
	res := b.useCases.CreatePost.Execute(ctx, usecase.CreatePostCommand{
		UserID:   userID,
		Topic:    topic,
		Platform: state.Platform,
		Tags:     tags,
	})
	if !res.Success {
		logger.WithContext(ctx).WithField("error", res.ErrorMessage()).Warn("Post creation failed")
		text := b.format("create_error", escape(res.ErrorMessage()))
		if waitMsg.MessageID != 0 {
			b.editText(chatID, waitMsg.MessageID, text, nil)
		} else {
			b.sendText(chatID, text, nil)
		}
		return
	}

	state.LastPostID = res.PostID
	if err := b.sessions.Set(ctx, userID, state); err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to update session")
	}
	if waitMsg.MessageID != 0 {
		b.deleteMessage(chatID, waitMsg.MessageID)
	}
	keyboard := b.previewKeyboard(res.PostID)
	b.sendText(chatID, b.formatPreview(res.Content), &keyboard)
}

// splitTopic separates #hashtags from the rest of the text. The hashtags
// become tags and the remaining words form the topic.
func splitTopic(text string) (string, []string) {
	var words, tags []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "#") && len(field) > 1 {
			tag := strings.ToLower(strings.TrimLeft(field, "#"))
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
			continue
		}
		words = append(words, field)
	}
	return strings.Join(words, " "), tags
}
