package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"infosite/internal/models"
	"infosite/internal/session"
)

// historyLimit is how many past lookups /historial shows
const historyLimit = 5

const (
	welcomeText = `¡Bienvenido! Usa /buscar para comenzar y seleccionar entre ID o Nombre.

También puedes usar:
/id <ID> - Buscar un sitio por ID
/nombre <nombre> - Buscar un sitio por nombre
/historial - Ver tus últimas búsquedas
/cancelar - Cancelar la búsqueda en curso`

	menuText      = "Selecciona una opción:"
	unknownText   = "No entiendo ese comando. Por favor, usa /start para ver las instrucciones."
	faultText     = "Ocurrió un error al procesar tu solicitud. Intenta de nuevo."
	cancelText    = "Búsqueda cancelada."
	noCancelText  = "No hay ninguna búsqueda en curso."
	noHistoryText = "Aún no has realizado búsquedas."
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, welcomeText))
}

// handleMenu shows the lookup mode choice; the session is armed only once a button is pressed
func (b *Bot) handleMenu(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, menuText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Buscar por ID", callbackSearchID),
			tgbotapi.NewInlineKeyboardButtonData("Buscar por Nombre", callbackSearchName),
		),
	)
	b.sendMessage(msg)
}

// handleDirectLookup serves /id and /nombre. Without an argument it prompts like the menu buttons.
func (b *Bot) handleDirectLookup(ctx context.Context, message *tgbotapi.Message, kind lookupKind) {
	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		b.armLookup(message.Chat.ID, kind, kind.prompt)
		return
	}
	b.lookup(ctx, message, kind, query)
}

// handleCancel drops the pending prompt of the chat
func (b *Bot) handleCancel(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if b.sessions.Take(chatID) == session.None {
		b.sendMessage(tgbotapi.NewMessage(chatID, noCancelText))
		return
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, cancelText))
}

// handleHistory shows the last lookups of the chat
func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	lookups, err := b.db.LastLookups(ctx, chatID, historyLimit)
	if err != nil {
		b.logger.Error("Failed to list lookups",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendMessage(tgbotapi.NewMessage(chatID, faultText))
		return
	}

	if len(lookups) == 0 {
		b.sendMessage(tgbotapi.NewMessage(chatID, noHistoryText))
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, formatHistory(lookups)))
}

func formatHistory(lookups []models.Lookup) string {
	var text strings.Builder
	text.WriteString("Tus últimas búsquedas:\n\n")
	for i, lookup := range lookups {
		mode := "ID"
		if lookup.Mode == models.LookupByName {
			mode = "Nombre"
		}
		result := "sin resultados"
		if lookup.Found {
			result = "encontrado"
		}
		text.WriteString(fmt.Sprintf("%d. %s - %s: %s (%s)\n",
			i+1,
			lookup.At.In(time.UTC).Format("2006-01-02 15:04 UTC"),
			mode,
			lookup.Query,
			result))
	}
	return text.String()
}
