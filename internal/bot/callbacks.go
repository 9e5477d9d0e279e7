package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback data of the inline buttons
const (
	callbackSearchID   = "buscar_id"
	callbackSearchName = "buscar_nombre"
	callbackRetryID    = "buscar_otro_id"
	callbackRetryName  = "buscar_otro_nombre"
)

// answerCallback acknowledges a button press so the client stops its spinner
func (b *Bot) answerCallback(queryID string) {
	if b.api == nil {
		return // For testing
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, "")); err != nil {
		b.logger.Warn("Failed to answer callback query",
			zap.Error(err),
			zap.String("callback_id", queryID),
		)
	}
}
