package bot

import (
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *TelegramBot) getLang() string {
	return b.lang
}

func (b *TelegramBot) text(key string) string {
	return b.localizer.GetMessage(b.getLang(), key)
}

func (b *TelegramBot) format(key string, args ...any) string {
	return b.localizer.Format(b.getLang(), key, args...)
}

func (b *TelegramBot) sendText(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
	return sent, err
}

func (b *TelegramBot) editText(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Error("Failed to edit message")
	}
}

func (b *TelegramBot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Warn("Failed to delete message")
	}
}

func (b *TelegramBot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.WithError(err).Warn("Failed to answer callback query")
	}
}

// sendLong sends blocks joined into as few messages as fit under the
// Telegram length limit. A block is never split across messages.
func (b *TelegramBot) sendLong(chatID int64, header string, blocks []string) {
	var sb strings.Builder
	sb.WriteString(header)
	for _, block := range blocks {
		if sb.Len() > 0 && sb.Len()+len(block) > maxMessageLength {
			b.sendText(chatID, sb.String(), nil)
			sb.Reset()
		}
		sb.WriteString(block)
	}
	if sb.Len() > 0 {
		b.sendText(chatID, sb.String(), nil)
	}
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
