package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start starts the bot in polling mode
func (b *Bot) Start() error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	_, err := b.client.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	// Create update configuration
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	// Get updates channel
	updates := b.client.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")

	// Handle updates (blocks until Stop)
	b.handleUpdates(updates)
	return nil
}

// Stop stops the polling loop
func (b *Bot) Stop() {
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
}

// StartWebhook sets up the bot to receive updates via webhook
func (b *Bot) StartWebhook(webhookURL, webhookPath string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	// Configure webhook
	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + webhookPath)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	webhookConfig.MaxConnections = 40

	_, err = b.client.Request(webhookConfig)
	if err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	// Get webhook info to verify
	info, err := b.client.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}

	b.logger.Info("Bot configured for webhook mode")
	return nil
}

// HandleUpdate processes a single update from either polling or webhook.
// Safe to call from several goroutines at once.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		// Inline keyboard button clicks
		b.handleCallbackQuery(update.CallbackQuery)
	default:
		b.logger.Debug("Ignoring unsupported update", zap.Int("update_id", update.UpdateID))
	}
}

// handleUpdates processes incoming updates from polling mode
func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		b.HandleUpdate(update)
	}
}
