package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/usecase"
)

type callbackAction struct {
	name     string
	postID   uuid.UUID
	platform domain.Platform
}

// parseCallbackData decodes "action:post_id" and "publish:post_id:platform".
func parseCallbackData(data string) (callbackAction, bool) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return callbackAction{}, false
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return callbackAction{}, false
	}
	action := callbackAction{name: parts[0], postID: id}
	if len(parts) == 3 {
		if action.name != actionPublish {
			return callbackAction{}, false
		}
		p, err := domain.ParsePlatform(parts[2])
		if err != nil {
			return callbackAction{}, false
		}
		action.platform = p
	}
	return action, true
}

func (b *TelegramBot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.From == nil {
		b.answerCallback(query.ID, b.text("invalid_action"))
		return
	}
	action, ok := parseCallbackData(query.Data)
	if !ok {
		b.answerCallback(query.ID, b.text("invalid_action"))
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	userID := query.From.ID
	logger.WithContext(ctx).WithFields(logrus.Fields{"action": action.name, "post_id": action.postID}).Debug("Callback received")

	switch action.name {
	case actionConfirm:
		b.answerCallback(query.ID, "")
		b.handleConfirm(ctx, chatID, messageID, userID, action.postID)
	case actionRegenerate:
		b.answerCallback(query.ID, "")
		b.handleRegenerate(ctx, chatID, messageID, userID, action.postID)
	case actionDelete:
		b.answerCallback(query.ID, "")
		b.handleDelete(ctx, chatID, messageID, userID, action.postID)
	case actionPublish:
		b.answerCallback(query.ID, "")
		b.handlePublish(ctx, chatID, messageID, userID, action.postID, action.platform)
	default:
		b.answerCallback(query.ID, b.text("unknown_action"))
	}
}

func (b *TelegramBot) handleConfirm(ctx context.Context, chatID int64, messageID int, userID int64, postID uuid.UUID) {
	res := b.useCases.ConfirmPost.Execute(ctx, usecase.ConfirmPostCommand{PostID: postID, UserID: userID})
	if !res.Success {
		b.editText(chatID, messageID, b.format("action_error", escape(res.ErrorMessage())), nil)
		return
	}
	keyboard := b.publishKeyboard(postID)
	b.editText(chatID, messageID, b.text("confirmed"), &keyboard)
}

func (b *TelegramBot) handleRegenerate(ctx context.Context, chatID int64, messageID int, userID int64, postID uuid.UUID) {
	b.editText(chatID, messageID, b.text("regenerating"), nil)

	var platform domain.Platform
	if state, ok, err := b.sessions.Get(ctx, userID); err == nil && ok && state.LastPostID == postID {
		platform = state.Platform
	}
	res := b.useCases.RegenerateContent.Execute(ctx, usecase.RegenerateContentCommand{PostID: postID, UserID: userID, Platform: platform})
	if !res.Success {
		b.editText(chatID, messageID, b.format("regenerate_error", escape(res.ErrorMessage())), nil)
		return
	}
	keyboard := b.previewKeyboard(postID)
	b.editText(chatID, messageID, b.formatPreview(res.Content), &keyboard)
}

func (b *TelegramBot) handleDelete(ctx context.Context, chatID int64, messageID int, userID int64, postID uuid.UUID) {
	res := b.useCases.DeletePost.Execute(ctx, usecase.DeletePostCommand{PostID: postID, UserID: userID})
	if !res.Success {
		b.editText(chatID, messageID, b.format("action_error", escape(res.ErrorMessage())), nil)
		return
	}
	b.editText(chatID, messageID, b.text("deleted"), nil)
}

func (b *TelegramBot) handlePublish(ctx context.Context, chatID int64, messageID int, userID int64, postID uuid.UUID, platform domain.Platform) {
	b.editText(chatID, messageID, b.text("publishing"), nil)

	var platforms []domain.Platform
	if platform != "" {
		platforms = []domain.Platform{platform}
	}
	res := b.useCases.PublishPost.Execute(ctx, usecase.PublishPostCommand{PostID: postID, Platforms: platforms, UserID: userID})
	if len(res.Results) == 0 {
		b.editText(chatID, messageID, b.format("publish_error", escape(res.ErrorMessage())), nil)
		return
	}
	b.editText(chatID, messageID, b.formatPublishResults(res), nil)
}
