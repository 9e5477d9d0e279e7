package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage sends a message and logs delivery failures
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if b.api == nil {
		return // For testing
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
	}
}

// senderID returns the author of a message, zero for channel posts
func senderID(message *tgbotapi.Message) int64 {
	if message.From == nil {
		return 0
	}
	return message.From.ID
}
