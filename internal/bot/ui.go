package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/usecase"
)

func callbackData(action string, postID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", action, postID)
}

func (b *TelegramBot) previewKeyboard(postID uuid.UUID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.text("btn_confirm"), callbackData(actionConfirm, postID)),
			tgbotapi.NewInlineKeyboardButtonData(b.text("btn_regenerate"), callbackData(actionRegenerate, postID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.text("btn_delete"), callbackData(actionDelete, postID)),
		),
	)
}

// publishKeyboard offers the default fan-out plus one button per configured
// platform.
func (b *TelegramBot) publishKeyboard(postID uuid.UUID) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.text("btn_publish"), callbackData(actionPublish, postID))),
	}
	if len(b.platforms) > 0 {
		var row []tgbotapi.InlineKeyboardButton
		for _, p := range b.platforms {
			data := fmt.Sprintf("%s:%s", callbackData(actionPublish, postID), p)
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.format("btn_publish_to", p.DisplayName()), data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *TelegramBot) formatPreview(content domain.PostContent) string {
	tags := "-"
	if len(content.Tags) > 0 {
		tags = strings.Join(content.Tags, ", ")
	}
	return b.format("preview",
		escape(content.Title),
		escape(truncateRunes(content.Body, previewBodyRunes)),
		escape(content.Topic),
		escape(tags),
	)
}

func (b *TelegramBot) formatPublishResults(res usecase.PublishPostResult) string {
	var sb strings.Builder
	if domain.AnySucceeded(res.Results) {
		sb.WriteString(b.text("publish_complete"))
	} else {
		sb.WriteString(b.text("publish_all_failed"))
	}
	for _, r := range res.Results {
		if r.Success {
			sb.WriteString(b.format("publish_result_ok", r.Platform.DisplayName(), escape(r.URL)))
			continue
		}
		sb.WriteString(b.format("publish_result_failed", r.Platform.DisplayName(), escape(r.ErrorMessage)))
	}
	return sb.String()
}

var statusIcons = map[domain.Status]string{
	domain.StatusDraft:     "📝",
	domain.StatusConfirmed: "✅",
	domain.StatusPublished: "🎉",
	domain.StatusFailed:    "⚠️",
}

func (b *TelegramBot) formatPostListItem(post *domain.Post) string {
	var sb strings.Builder
	content := post.Content()
	sb.WriteString(b.format("my_posts_item",
		statusIcons[post.Status()],
		escape(content.Title),
		b.text("status_"+string(post.Status())),
		post.CreatedAt().Format("2006-01-02 15:04"),
	))
	for _, r := range post.SuccessfulPublications() {
		sb.WriteString(b.format("my_posts_link", r.Platform.DisplayName(), escape(r.URL)))
	}
	sb.WriteString("\n")
	return sb.String()
}
