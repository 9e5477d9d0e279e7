package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"infosite/internal/models"
	"infosite/internal/session"
	"infosite/internal/storage"
)

// Sender is the part of the Telegram API the router talks to.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SiteFinder resolves lookups against the loaded dataset
type SiteFinder interface {
	FindByID(id string) (models.Site, bool)
	FindByName(name string) (models.Site, bool)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api      Sender
	client   *tgbotapi.BotAPI // nil in tests; needed for polling and webhook setup
	sites    SiteFinder
	db       storage.Storage
	sessions *session.Tracker
	logger   *zap.Logger
}
