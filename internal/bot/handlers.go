package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"infosite/internal/session"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage",
				zap.Any("panic", r),
				zap.Int64("chat_id", message.Chat.ID),
				zap.String("text", message.Text),
			)
			b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, faultText))
		}
	}()

	ctx := context.Background()

	b.logger.Debug("Message received",
		zap.Int64("chat_id", message.Chat.ID),
		zap.Int64("user_id", senderID(message)),
		zap.String("text", message.Text),
	)

	// Handle commands
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	// Stickers, photos and the like are not answers to a prompt
	if message.Text == "" {
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, unknownText))
		return
	}

	// Free text is a lookup only if the chat was prompted for one
	switch b.sessions.Take(message.Chat.ID) {
	case session.AwaitingID:
		b.lookup(ctx, message, byID, message.Text)
	case session.AwaitingName:
		b.lookup(ctx, message, byName, message.Text)
	default:
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, unknownText))
	}
}

// handleCommand dispatches slash commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start", "help":
		b.handleStart(message)
	case "buscar", "menu":
		b.handleMenu(message)
	case "id":
		b.handleDirectLookup(ctx, message, byID)
	case "nombre":
		b.handleDirectLookup(ctx, message, byName)
	case "historial":
		b.handleHistory(ctx, message)
	case "cancelar":
		b.handleCancel(message)
	default:
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, unknownText))
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery",
				zap.Any("panic", r),
				zap.String("callback_data", query.Data),
			)
			if query.Message != nil && query.Message.Chat != nil {
				b.sendMessage(tgbotapi.NewMessage(query.Message.Chat.ID, faultText))
			}
		}
	}()

	// Answer the callback query to remove loading state
	b.answerCallback(query.ID)

	// Buttons on inline-mode messages carry no chat
	if query.Message == nil || query.Message.Chat == nil {
		b.logger.Debug("Callback query without message", zap.String("callback_data", query.Data))
		return
	}

	chatID := query.Message.Chat.ID

	switch query.Data {
	case callbackSearchID:
		b.armLookup(chatID, byID, promptIDText)
	case callbackSearchName:
		b.armLookup(chatID, byName, promptNameText)
	case callbackRetryID:
		b.armLookup(chatID, byID, retryIDText)
	case callbackRetryName:
		b.armLookup(chatID, byName, retryNameText)
	default:
		b.logger.Warn("Unknown callback data",
			zap.Int64("chat_id", chatID),
			zap.String("callback_data", query.Data),
		)
		b.sendMessage(tgbotapi.NewMessage(chatID, unknownText))
	}
}
