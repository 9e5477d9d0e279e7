package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"infosite/internal/session"
	"infosite/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, sites SiteFinder, db storage.Storage, sessions *session.Tracker, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:      api,
		client:   api,
		sites:    sites,
		db:       db,
		sessions: sessions,
		logger:   logger,
	}, nil
}
