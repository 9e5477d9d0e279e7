package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"infosite/internal/models"
	"infosite/internal/session"
)

// storageTimeout bounds history reads and writes
const storageTimeout = 5 * time.Second

const (
	promptIDText     = "Ingresa el ID:"
	promptNameText   = "Ingresa el nombre:"
	retryIDText      = "Ingresa el ID nuevamente:"
	retryNameText    = "Ingresa el nombre nuevamente:"
	notFoundIDText   = "No se encontró el ID especificado. ¿Quieres intentar nuevamente?"
	notFoundNameText = "No se encontró el nombre especificado. ¿Quieres intentar nuevamente?"
	retryButtonText  = "Volver a buscar"
)

// lookupKind ties a pending mode to its dataset query and replies
type lookupKind struct {
	mode          session.Mode
	historyMode   string
	prompt        string
	notFound      string
	retryCallback string
}

var (
	byID = lookupKind{
		mode:          session.AwaitingID,
		historyMode:   models.LookupByID,
		prompt:        promptIDText,
		notFound:      notFoundIDText,
		retryCallback: callbackRetryID,
	}
	byName = lookupKind{
		mode:          session.AwaitingName,
		historyMode:   models.LookupByName,
		prompt:        promptNameText,
		notFound:      notFoundNameText,
		retryCallback: callbackRetryName,
	}
)

func (b *Bot) find(kind lookupKind, query string) (models.Site, bool) {
	if kind.mode == session.AwaitingName {
		return b.sites.FindByName(query)
	}
	return b.sites.FindByID(query)
}

// armLookup makes the chat's next free-text message a lookup of the given kind
func (b *Bot) armLookup(chatID int64, kind lookupKind, prompt string) {
	if err := b.sessions.Set(chatID, kind.mode); err != nil {
		b.logger.Error("Failed to set session mode",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Stringer("mode", kind.mode),
		)
		b.sendMessage(tgbotapi.NewMessage(chatID, faultText))
		return
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, prompt))
}

// lookup resolves the query and replies with the record or a retry offer
func (b *Bot) lookup(ctx context.Context, message *tgbotapi.Message, kind lookupKind, query string) {
	chatID := message.Chat.ID

	site, found := b.find(kind, query)
	b.recordLookup(ctx, message, kind, query, site, found)

	if !found {
		b.logger.Info("Site not found",
			zap.Int64("chat_id", chatID),
			zap.String("mode", kind.historyMode),
			zap.String("query", query),
		)
		msg := tgbotapi.NewMessage(chatID, kind.notFound)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(retryButtonText, kind.retryCallback),
			),
		)
		b.sendMessage(msg)
		return
	}

	b.logger.Info("Site found",
		zap.Int64("chat_id", chatID),
		zap.String("mode", kind.historyMode),
		zap.String("site_id", site.ID),
	)
	msg := tgbotapi.NewMessage(chatID, FormatSite(site))
	msg.ReplyToMessageID = message.MessageID
	b.sendMessage(msg)
}

// recordLookup appends to the history; failures never reach the user
func (b *Bot) recordLookup(ctx context.Context, message *tgbotapi.Message, kind lookupKind, query string, site models.Site, found bool) {
	if b.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	lookup := models.Lookup{
		At:     time.Now().UTC(),
		ChatID: message.Chat.ID,
		UserID: senderID(message),
		Mode:   kind.historyMode,
		Query:  strings.TrimSpace(query),
		Found:  found,
	}
	if found {
		lookup.SiteID = site.ID
	}

	if err := b.db.RecordLookup(ctx, lookup); err != nil {
		b.logger.Warn("Failed to record lookup",
			zap.Error(err),
			zap.Int64("chat_id", lookup.ChatID),
		)
	}
}
