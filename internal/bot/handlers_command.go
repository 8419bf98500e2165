package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/session"
)

func (b *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	logger.WithContext(ctx).Debugf("Command /%s", message.Command())
	switch message.Command() {
	case "start":
		b.sendText(chatID, b.text("welcome_message"), nil)
	case "help":
		b.sendText(chatID, b.text("help_message"), nil)
	case "new_post":
		b.handleNewPostCommand(ctx, message)
	case "my_posts":
		b.handleMyPostsCommand(ctx, message)
	case "ideas":
		b.handleIdeasCommand(ctx, message)
	case "cancel":
		b.handleCancelCommand(ctx, message)
	default:
		b.sendText(chatID, b.text("unknown_command"), nil)
	}
}

func (b *TelegramBot) handleNewPostCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	var platform domain.Platform
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		p, err := domain.ParsePlatform(arg)
		if err != nil {
			b.sendText(chatID, b.format("invalid_platform", escape(arg)), nil)
			return
		}
		platform = p
	}

	state, _, err := b.sessions.Get(ctx, message.From.ID)
	if err == nil {
		state.Step = session.StepAwaitingTopic
		state.Platform = platform
		err = b.sessions.Set(ctx, message.From.ID, state)
	}
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to store session")
		b.sendText(chatID, b.text("generic_error"), nil)
		return
	}

	if platform != "" {
		b.sendText(chatID, b.format("new_post_prompt_platform", platform.DisplayName()), nil)
		return
	}
	b.sendText(chatID, b.text("new_post_prompt"), nil)
}

func (b *TelegramBot) handleMyPostsCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	res := b.useCases.ListPosts.Execute(ctx, message.From.ID)
	if !res.Success {
		b.sendText(chatID, b.format("action_error", escape(res.ErrorMessage())), nil)
		return
	}
	if len(res.Posts) == 0 {
		b.sendText(chatID, b.text("my_posts_empty"), nil)
		return
	}
	posts := res.Posts
	if len(posts) > maxListedPosts {
		posts = posts[:maxListedPosts]
	}
	blocks := make([]string, 0, len(posts))
	for _, post := range posts {
		blocks = append(blocks, b.formatPostListItem(post))
	}
	b.sendLong(chatID, b.text("my_posts_title"), blocks)
}

func (b *TelegramBot) handleIdeasCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if b.ideas == nil || len(b.feedURLs) == 0 {
		b.sendText(chatID, b.text("ideas_empty"), nil)
		return
	}
	waitMsg, _ := b.sendText(chatID, b.text("searching_ideas"), nil)
	topics := b.ideas.SuggestTopics(ctx, b.feedURLs, maxIdeas)
	if waitMsg.MessageID != 0 {
		b.deleteMessage(chatID, waitMsg.MessageID)
	}
	if len(topics) == 0 {
		b.sendText(chatID, b.text("ideas_empty"), nil)
		return
	}
	var sb strings.Builder
	sb.WriteString(b.text("ideas_title"))
	for _, topic := range topics {
		sb.WriteString(b.format("ideas_item", escape(topic)))
	}
	b.sendText(chatID, sb.String(), nil)
}

func (b *TelegramBot) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	state, ok, err := b.sessions.Get(ctx, message.From.ID)
	if err != nil || !ok || state.Step == session.StepIdle {
		b.sendText(chatID, b.text("cancel_nothing"), nil)
		return
	}
	state.Step = session.StepIdle
	state.Platform = ""
	if err := b.sessions.Set(ctx, message.From.ID, state); err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to reset session")
	}
	b.sendText(chatID, b.text("cancel_success"), nil)
}
