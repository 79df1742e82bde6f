package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
)

// CommandHandler handles a specific bot command and returns the reply text.
type CommandHandler func(ctx context.Context, update *models.Update) (string, error)

// CommandRegistry manages bot command handlers
type CommandRegistry struct {
	handlers map[string]CommandHandler
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		handlers: make(map[string]CommandHandler),
	}
}

// Register adds a command handler to the registry
func (r *CommandRegistry) Register(command string, handler CommandHandler) {
	r.handlers[command] = handler
}

// Handle dispatches a command update to its handler. The command token
// is split from any arguments and stripped of a bot-name suffix
// ("/help@SomeBot" reaches the "/help" handler).
func (r *CommandRegistry) Handle(ctx context.Context, update *models.Update) (string, error) {
	if update.Message == nil || update.Message.Text == "" {
		return "", nil
	}

	text := update.Message.Text
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}

	command := strings.SplitN(text, " ", 2)[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	handler, exists := r.handlers[command]
	if !exists {
		return "Unknown command: " + command, nil
	}

	return handler(ctx, update)
}

// handleStartCommand greets the user when the conversation begins.
func handleStartCommand(_ context.Context, update *models.Update) (string, error) {
	firstName := "there"
	if update.Message != nil && update.Message.From != nil && update.Message.From.FirstName != "" {
		firstName = update.Message.From.FirstName
	}

	return "Hi " + firstName + "! I'm your BCN Art Compass bot.\n\n" +
		"Tell me what kind of art or cultural events you're interested in, " +
		"and I'll ask the BCN Art Compass AI to help you discover exhibitions " +
		"and galleries in Barcelona.", nil
}

// handleHelpCommand explains how to talk to the bot.
func handleHelpCommand(_ context.Context, _ *models.Update) (string, error) {
	return "You can send me any message like:\n" +
		"- \"I love sculpture and don't like video art\"\n" +
		"- \"What art exhibitions are happening this weekend?\"\n" +
		"- \"I'm in Gràcia, suggest something nearby\"\n\n" +
		"I'll forward it to BCN Art Compass and reply with its recommendations.", nil
}

// setupCommands initializes the command registry with all available commands
func (c *Connector) setupCommands() {
	c.commands = NewCommandRegistry()
	c.commands.Register("/start", handleStartCommand)
	c.commands.Register("/help", handleHelpCommand)
}

// handleCommand dispatches a command update and sends the response.
func (c *Connector) handleCommand(ctx context.Context, update *models.Update, log logger.Logger) {
	log.Info("Processing command", logger.StringField("command", update.Message.Text))

	response, err := c.commands.Handle(ctx, update)
	if err != nil {
		log.Error("Error handling command",
			logger.StringField("command", update.Message.Text),
			logger.ErrorField(err))
		response = "An error occurred while processing your command."
	}

	c.sendReply(ctx, update.Message.Chat.ID, response, log)
}
