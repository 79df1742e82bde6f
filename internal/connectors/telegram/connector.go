// Package telegram implements the inbound adapter: it receives Telegram
// updates, relays message text to the orchestrator, and sends the reply
// back to the originating chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	appconfig "github.com/bcn-art-compass/telegram-bot/internal/config"
	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
	"github.com/bcn-art-compass/telegram-bot/pkg/metrics"
)

// Relayer forwards one user message to the orchestrator and returns the
// reply text, or a fallback string on failure. It never errors.
type Relayer interface {
	Relay(ctx context.Context, userID, message string) string
}

// telegramAPI is the slice of the bot API the handler uses. *bot.Bot
// satisfies it; tests substitute a fake.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// Connector wires the Telegram bot to the relay client.
type Connector struct {
	bot      *bot.Bot
	api      telegramAPI
	relay    Relayer
	commands *CommandRegistry
	metrics  *metrics.Metrics
	log      logger.Logger
}

// NewConnector creates a Telegram connector for the given relay client.
// metrics may be nil.
func NewConnector(cfg appconfig.TelegramConfig, relay Relayer, log logger.Logger, m *metrics.Metrics) (*Connector, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if relay == nil {
		return nil, fmt.Errorf("relay client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	connector := &Connector{
		relay:   relay,
		metrics: m,
		log:     log.WithFields(logger.StringField("connector", "telegram")),
	}
	connector.setupCommands()

	opts := []bot.Option{
		bot.WithDefaultHandler(connector.handleUpdate),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	connector.bot = b
	connector.api = b
	connector.log.Info("Telegram bot initialized")

	return connector, nil
}

// Start begins long polling for updates. It blocks until the context is
// cancelled; any in-flight orchestrator call is abandoned with it.
func (c *Connector) Start(ctx context.Context) error {
	c.log.Info("Starting Telegram bot polling")
	c.bot.Start(ctx)
	return nil
}

// GetBotInfo returns information about the bot account.
func (c *Connector) GetBotInfo(ctx context.Context) (*models.User, error) {
	return c.bot.GetMe(ctx)
}

// Ready reports whether the bot can reach the Telegram API.
func (c *Connector) Ready(ctx context.Context) error {
	_, err := c.bot.GetMe(ctx)
	return err
}

// handleUpdate processes one incoming Telegram update. Each update is
// handled in isolation: a relay failure surfaces as the fallback reply
// and never affects later messages.
func (c *Connector) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if c.metrics != nil {
		c.metrics.UpdatesReceived.Inc()
	}

	if update.Message == nil {
		c.skip(metrics.SkipReasonNonMessage)
		return
	}
	if update.Message.From != nil && update.Message.From.IsBot {
		// Avoid bot-to-bot loops
		c.skip(metrics.SkipReasonBotSender)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		c.skip(metrics.SkipReasonEmptyText)
		return
	}

	ctx, correlationID := logger.EnsureCorrelationID(ctx)
	log := c.log.WithCorrelationID(correlationID)

	if strings.HasPrefix(text, "/") {
		c.handleCommand(ctx, update, log)
		return
	}

	userID := DeriveUserID(update)
	log = log.WithFields(
		logger.UserIDField(userID),
		logger.Int64Field("chat_id", update.Message.Chat.ID),
	)
	log.Info("Relaying message to orchestrator", logger.IntField("text_len", len(text)))

	// Typing indicator while the orchestrator thinks; failure here is
	// cosmetic only.
	if _, err := c.api.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: update.Message.Chat.ID,
		Action: models.ChatActionTyping,
	}); err != nil {
		log.Debug("Failed to send typing action", logger.ErrorField(err))
	}

	reply := c.relay.Relay(ctx, userID, text)
	c.sendReply(ctx, update.Message.Chat.ID, FormatForTelegram(reply), log)
}

// sendReply sends one outbound message. No retries: a failed send is
// logged and counted, nothing else.
func (c *Connector) sendReply(ctx context.Context, chatID int64, text string, log logger.Logger) {
	if text == "" {
		return
	}

	if _, err := c.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		if c.metrics != nil {
			c.metrics.SendFailures.Inc()
		}
		log.Error("Failed to send reply to Telegram", logger.ErrorField(err))
		return
	}

	log.Debug("Reply sent", logger.IntField("reply_len", len(text)))
}

// skip records an update that produced no relay call and no reply.
func (c *Connector) skip(reason string) {
	if c.metrics != nil {
		c.metrics.UpdatesSkipped.WithLabelValues(reason).Inc()
	}
	c.log.Debug("Skipping update", logger.StringField("reason", reason))
}
