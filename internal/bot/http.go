package bot

import (
	"encoding/json"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HTTPServer serves the health check and the Telegram webhook
type HTTPServer struct {
	bot         *Bot
	webhookMode bool
	webhookPath string

	// dispatch hands a decoded update to the bot; replaced in tests
	dispatch func(update tgbotapi.Update)
}

// NewHTTPServer creates the HTTP handlers for the bot
func NewHTTPServer(bot *Bot, webhookMode bool, webhookPath string) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
		webhookPath: webhookPath,
		// Process update in background to respond quickly to Telegram
		dispatch: func(update tgbotapi.Update) { go bot.HandleUpdate(update) },
	}
}

// RegisterRoutes registers the routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/", hs.handleIndex)

	// Webhook endpoint (only used in webhook mode)
	mux.HandleFunc(hs.webhookPath, hs.handleWebhook)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (hs *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	mode := "polling"
	if hs.webhookMode {
		mode = "webhook"
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Infosite bot is running (mode: %s)", mode)
}

func (hs *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.bot.logger.Warn("Error decoding webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	hs.dispatch(update)

	w.WriteHeader(http.StatusOK)
}
